package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
	"github.com/philallum/AdReply-sub001/internal/repo"
)

// PreferenceService reads and writes per-user ranking preferences.
type PreferenceService struct {
	DB *gorm.DB
}

// Get returns the user's preferences, or zero-value defaults when none
// have been stored.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*domain.Preference, error) {
	return repo.GetPreference(ctx, s.DB, userID)
}

// Set stores the user's preferred category and default URL. The tier flag
// is billing-controlled and survives preference updates untouched.
func (s *PreferenceService) Set(ctx context.Context, userID, category, defaultURL string) (*domain.Preference, error) {
	existing, err := repo.GetPreference(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	p := &domain.Preference{
		UserID:            userID,
		PreferredCategory: category,
		DefaultURL:        defaultURL,
		Unmetered:         existing.Unmetered,
	}
	if err := repo.UpsertPreference(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return repo.GetPreference(ctx, s.DB, userID)
}
