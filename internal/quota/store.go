package quota

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
)

// StoreWindow implements Window over the request_log table. It is the
// default backend for single-process deployments without Redis.
type StoreWindow struct {
	db *gorm.DB
}

// NewStoreWindow wraps a GORM handle.
func NewStoreWindow(db *gorm.DB) *StoreWindow {
	return &StoreWindow{db: db}
}

// Count returns the number of in-window request rows for userID.
func (w *StoreWindow) Count(ctx context.Context, userID string, window time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-window)
	var total int64
	err := w.db.WithContext(ctx).
		Model(&domain.RequestLog{}).
		Where("user_id = ? AND requested_at > ?", userID, cutoff).
		Count(&total).Error
	return int(total), err
}

// Oldest returns the earliest in-window request time, or nil when empty.
func (w *StoreWindow) Oldest(ctx context.Context, userID string, window time.Duration) (*time.Time, error) {
	cutoff := time.Now().UTC().Add(-window)
	var row domain.RequestLog
	err := w.db.WithContext(ctx).
		Where("user_id = ? AND requested_at > ?", userID, cutoff).
		Order("requested_at ASC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	at := row.RequestedAt.UTC()
	return &at, nil
}

// Record appends one request row and prunes entries older than twice the
// window, keeping the table bounded without a background job.
func (w *StoreWindow) Record(ctx context.Context, userID string, at time.Time) error {
	rec := &domain.RequestLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		RequestedAt: at.UTC(),
	}
	if err := w.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	return w.db.WithContext(ctx).
		Where("user_id = ? AND requested_at < ?", userID, at.UTC().Add(-48*time.Hour)).
		Delete(&domain.RequestLog{}).Error
}
