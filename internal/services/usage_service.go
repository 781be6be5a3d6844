// Package services – UsageService
//
// This file implements the UsageService, which records that a suggested
// reply was actually posted. An accepted suggestion appends a usage record
// (the input to recency-aware ranking) and cancels the pending ignore timer
// for its template; a dismissal cancels the timer without recording
// anything.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
	"github.com/philallum/AdReply-sub001/internal/repo"
)

// UsageService records suggestion acceptances and dismissals.
type UsageService struct {
	// DB is the GORM handle shared with the repositories.
	DB *gorm.DB
	// Ignore holds the pending suppression timers.
	Ignore *IgnoreRegistry
}

// Accept records that the user posted the given template variant in the
// given group. It validates ownership and variant bounds before writing.
func (s *UsageService) Accept(ctx context.Context, userID, templateID string, variantIndex int, groupID string) (*domain.UsageRecord, error) {
	if groupID == "" {
		return nil, ErrEmptyGroup
	}

	t, err := repo.GetTemplate(ctx, s.DB, templateID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	bodies, err := t.VariantBodies()
	if err != nil || variantIndex < 0 || variantIndex >= len(bodies) {
		return nil, ErrBadVariant
	}

	rec, err := repo.AppendUsage(ctx, s.DB, userID, templateID, variantIndex, groupID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if s.Ignore != nil {
		s.Ignore.Cancel(templateID)
	}
	return rec, nil
}

// Dismiss cancels the pending ignore timer for a template the user chose
// not to post. It reports whether a timer was pending.
func (s *UsageService) Dismiss(templateID string) bool {
	if s.Ignore == nil {
		return false
	}
	return s.Ignore.Cancel(templateID)
}
