// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
)

// TemplatesStats returns aggregate metadata for a user's template library:
// the total number of rows and the maximum UpdatedAt timestamp among them.
// When the user has no templates, count is 0 and maxUpdatedAt is nil.
func TemplatesStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Template{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// UsageStats returns aggregate metadata for a group's usage log: the total
// number of rows and the most recent UsedAt timestamp. When the group has no
// usage, count is 0 and maxUsedAt is nil.
func UsageStats(ctx context.Context, db *gorm.DB, userID, groupID string) (count int64, maxUsedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.UsageRecord{}).
		Where("user_id = ? AND group_id = ?", userID, groupID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UsedAt time.Time
	}
	if err = q.Select("used_at").Order("used_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UsedAt, nil
}
