package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
)

// GormTemplateRepo adapts the package-level template functions to an
// interface value, so services can be exercised against fakes in tests.
type GormTemplateRepo struct{}

func (GormTemplateRepo) CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.Template) (*domain.Template, error) {
	return CreateTemplate(ctx, db, t)
}

func (GormTemplateRepo) ListTemplates(ctx context.Context, db *gorm.DB, userID string) ([]domain.Template, error) {
	return ListTemplates(ctx, db, userID)
}

func (GormTemplateRepo) GetTemplate(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Template, error) {
	return GetTemplate(ctx, db, id, userID)
}

func (GormTemplateRepo) UpdateTemplate(ctx context.Context, db *gorm.DB, id, userID string, t *domain.Template) error {
	return UpdateTemplate(ctx, db, id, userID, t)
}

func (GormTemplateRepo) DeleteTemplate(ctx context.Context, db *gorm.DB, id, userID string) error {
	return DeleteTemplate(ctx, db, id, userID)
}

func (GormTemplateRepo) CountTemplates(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return CountTemplates(ctx, db, userID)
}

func (GormTemplateRepo) ListTemplatesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Template, error) {
	return ListTemplatesPage(ctx, db, userID, offset, limit)
}
