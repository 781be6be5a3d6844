// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// Usage Log and the Preference model.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
)

// AppendUsage inserts one acceptance record. Usage rows are never updated
// or deleted by the application.
func AppendUsage(ctx context.Context, db *gorm.DB, userID, templateID string, variantIndex int, groupID string, usedAt time.Time) (*domain.UsageRecord, error) {
	rec := &domain.UsageRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		TemplateID:   templateID,
		VariantIndex: variantIndex,
		GroupID:      groupID,
		UsedAt:       usedAt.UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	return rec, db.WithContext(ctx).Create(rec).Error
}

// ListUsageSince returns the usage records for a group newer than since,
// ordered deterministically (UsedAt ASC, ID ASC). The ranker applies the
// exact lookback window itself; this query just bounds the scan.
func ListUsageSince(ctx context.Context, db *gorm.DB, userID, groupID string, since time.Time) ([]domain.UsageRecord, error) {
	var out []domain.UsageRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND group_id = ? AND used_at > ?", userID, groupID, since).
		Order("used_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// GetUsage fetches one usage record by ID (idempotent replays of an
// acceptance return the originally recorded row).
func GetUsage(ctx context.Context, db *gorm.DB, id string) (*domain.UsageRecord, error) {
	var rec domain.UsageRecord
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetPreference returns the stored preference row for userID, or a zero
// Preference (metered, no category, no URL) when none exists yet.
func GetPreference(ctx context.Context, db *gorm.DB, userID string) (*domain.Preference, error) {
	var p domain.Preference
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.Preference{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPreference creates or replaces the preference row for p.UserID.
func UpsertPreference(ctx context.Context, db *gorm.DB, p *domain.Preference) error {
	var existing domain.Preference
	err := db.WithContext(ctx).Where("user_id = ?", p.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p.CreatedAt = time.Now().UTC()
		return db.WithContext(ctx).Create(p).Error
	}
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&domain.Preference{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]any{
			"preferred_category": p.PreferredCategory,
			"default_url":        p.DefaultURL,
			"unmetered":          p.Unmetered,
		}).Error
}
