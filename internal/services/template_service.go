// Package services – TemplateService
//
// This file implements the TemplateService, which manages the lifecycle of
// reply templates (the Template Store). It validates keyword and variant
// input at the boundary so the matching engine downstream can assume
// well-formed data, enforces ownership rules, and coordinates repository
// operations for creating, listing (with pagination), updating, deleting,
// and bulk import/export of templates.
//
// Service-level errors (e.g., ErrTemplateNotFound) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateRepo defines the repository contract required by TemplateService.
// Implementations are responsible for persistence of template rows.
type TemplateRepo interface {
	// CreateTemplate inserts a validated template row.
	CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.Template) (*domain.Template, error)

	// ListTemplates returns all templates belonging to the user.
	ListTemplates(ctx context.Context, db *gorm.DB, userID string) ([]domain.Template, error)

	// GetTemplate fetches a template by ID ensuring it belongs to the user.
	GetTemplate(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Template, error)

	// UpdateTemplate replaces the mutable columns of an owned template.
	UpdateTemplate(ctx context.Context, db *gorm.DB, id, userID string, t *domain.Template) error

	// DeleteTemplate removes an owned template.
	DeleteTemplate(ctx context.Context, db *gorm.DB, id, userID string) error

	// CountTemplates returns the total number of templates for pagination.
	CountTemplates(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// ListTemplatesPage returns a page of templates belonging to the user.
	ListTemplatesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Template, error)
}

// TemplateInput is the validated-at-the-boundary shape for template writes
// and imports.
type TemplateInput struct {
	Label    string   `json:"label"`
	Body     string   `json:"body"`
	Keywords []string `json:"keywords"`
	Variants []string `json:"variants,omitempty"`
	Category string   `json:"category,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// TemplateService provides template-library operations. It enforces label
// rules and ensures ownership constraints.
type TemplateService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the template repository used by this service.
	Repo TemplateRepo

	// LabelMaxLen caps stored labels by rune length.
	LabelMaxLen int
	// LabelLocale selects the casing rules for generated labels.
	LabelLocale language.Tag
}

// NewTemplateService constructs a TemplateService with sane defaults for
// label handling.
func NewTemplateService(db *gorm.DB, r TemplateRepo) *TemplateService {
	return &TemplateService{
		DB:          db,
		Repo:        r,
		LabelMaxLen: 60,
		LabelLocale: language.Und,
	}
}

// Create validates and inserts a new template owned by userID. A missing
// label is generated from the body text.
func (s *TemplateService) Create(ctx context.Context, userID string, in TemplateInput) (*domain.Template, error) {
	label := normalizeLabel(in.Label)
	if label == "" {
		label = s.generateLabelFromBody(in.Body)
	}
	if label == "" {
		label = "New template"
	}

	t, err := domain.NewTemplate(userID, s.clip(label), in.Body, in.Keywords, in.Variants, in.Category, in.URL)
	if err != nil {
		return nil, ErrInvalidTemplate
	}
	return s.Repo.CreateTemplate(ctx, s.DB, t)
}

// List returns all templates for a user (non-paginated).
// Prefer ListPage for scalability on large libraries.
func (s *TemplateService) List(ctx context.Context, userID string) ([]domain.Template, error) {
	return s.Repo.ListTemplates(ctx, s.DB, userID)
}

// ListPage returns a page of templates for a user (paginated).
// It applies defaults for invalid page/pageSize and returns total count.
func (s *TemplateService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Template, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountTemplates(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Template{}, 0, nil
	}

	items, err := s.Repo.ListTemplatesPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// Get fetches a single owned template.
func (s *TemplateService) Get(ctx context.Context, userID, id string) (*domain.Template, error) {
	t, err := s.Repo.GetTemplate(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update validates the input and replaces an owned template's contents.
func (s *TemplateService) Update(ctx context.Context, userID, id string, in TemplateInput) (*domain.Template, error) {
	label := normalizeLabel(in.Label)
	if label == "" {
		label = s.generateLabelFromBody(in.Body)
	}
	if label == "" {
		label = "Untitled"
	}

	t, err := domain.NewTemplate(userID, s.clip(label), in.Body, in.Keywords, in.Variants, in.Category, in.URL)
	if err != nil {
		return nil, ErrInvalidTemplate
	}
	if err := s.Repo.UpdateTemplate(ctx, s.DB, id, userID, t); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return s.Repo.GetTemplate(ctx, s.DB, id, userID)
}

// Delete removes an owned template.
func (s *TemplateService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.DeleteTemplate(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// Export returns the user's full library in the import/export shape.
func (s *TemplateService) Export(ctx context.Context, userID string) ([]TemplateInput, error) {
	items, err := s.Repo.ListTemplates(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]TemplateInput, 0, len(items))
	for _, t := range items {
		kws, err := t.KeywordList()
		if err != nil {
			kws = []string{}
		}
		bodies, err := t.VariantBodies()
		var variants []string
		if err == nil && len(bodies) > 1 {
			variants = bodies[1:]
		}
		out = append(out, TemplateInput{
			Label:    t.Label,
			Body:     t.Body,
			Keywords: kws,
			Variants: variants,
			Category: t.Category,
			URL:      t.URL,
		})
	}
	return out, nil
}

// Import creates one template per valid entry, returning the number
// imported and the number skipped as invalid. An entirely unusable payload
// yields ErrEmptyImport.
func (s *TemplateService) Import(ctx context.Context, userID string, items []TemplateInput) (imported, skipped int, err error) {
	for _, in := range items {
		if _, cerr := s.Create(ctx, userID, in); cerr != nil {
			if errors.Is(cerr, ErrInvalidTemplate) {
				skipped++
				continue
			}
			return imported, skipped, cerr
		}
		imported++
	}
	if imported == 0 {
		return 0, skipped, ErrEmptyImport
	}
	return imported, skipped, nil
}

// clip truncates a label to the configured maximum rune length.
func (s *TemplateService) clip(label string) string {
	if s.LabelMaxLen > 0 && utf8.RuneCountInString(label) > s.LabelMaxLen {
		return string([]rune(label)[:s.LabelMaxLen])
	}
	return label
}

// generateLabelFromBody derives a concise label from the reply text.
func (s *TemplateService) generateLabelFromBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	toks := labelWordRE.FindAllString(strings.ToLower(body), -1)
	if len(toks) == 0 {
		return ""
	}

	caser := cases.Title(s.labelLocaleOrDefault())
	out := make([]string, 0, 6)
	for _, w := range toks {
		if _, skip := labelStopWords[w]; skip {
			continue
		}
		out = append(out, caser.String(w))
		if len(out) >= 6 {
			break
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, " ")
}

// labelLocaleOrDefault returns the configured locale for casing or English
// if unset.
func (s *TemplateService) labelLocaleOrDefault() language.Tag {
	if s.LabelLocale == language.Und {
		return language.English
	}
	return s.LabelLocale
}

// normalizeLabel trims whitespace and collapses multiple spaces to one.
func normalizeLabel(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// labelWordRE extracts words (letters with optional trailing digits).
var labelWordRE = regexp.MustCompile(`[\p{L}]+[\p{N}]*`)

// labelStopWords is a minimal English stop-word set for compact labels.
var labelStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
}
