// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Template
// model (the Template Store).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a template is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateTemplate inserts a validated template owned by t.UserID. The row ID
// is a randomly generated UUID and CreatedAt is set to UTC.
func CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.Template) (*domain.Template, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListTemplates returns every template belonging to userID, ordered by
// creation time ascending so library order matches authoring order.
func ListTemplates(ctx context.Context, db *gorm.DB, userID string) ([]domain.Template, error) {
	var out []domain.Template
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// CountTemplates returns the total number of templates owned by userID.
func CountTemplates(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Template{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListTemplatesPage returns a paginated slice of templates for userID,
// ordered by creation time ascending. Use CountTemplates for pagination
// metadata.
func ListTemplatesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Template, error) {
	var out []domain.Template
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetTemplate fetches a single template by ID and owner. Missing rows
// surface as ErrNotFound.
func GetTemplate(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Template, error) {
	var t domain.Template
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTemplate replaces the mutable columns of a template owned by
// userID. Returns ErrNotFound when no row was affected.
func UpdateTemplate(ctx context.Context, db *gorm.DB, id, userID string, t *domain.Template) error {
	res := db.WithContext(ctx).
		Model(&domain.Template{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"label":    t.Label,
			"body":     t.Body,
			"keywords": t.Keywords,
			"variants": t.Variants,
			"category": t.Category,
			"url":      t.URL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTemplate soft-deletes a template owned by userID. Returns
// ErrNotFound when no row was affected.
func DeleteTemplate(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Template{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
