package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
)

// fakeTemplateRepo is an in-memory TemplateRepo for service tests.
type fakeTemplateRepo struct {
	rows    map[string]*domain.Template
	nextID  int
	failAll error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{rows: map[string]*domain.Template{}}
}

func (f *fakeTemplateRepo) CreateTemplate(_ context.Context, _ *gorm.DB, t *domain.Template) (*domain.Template, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.nextID++
	id := string(rune('a' + f.nextID - 1))
	cp := *t
	cp.ID = id
	f.rows[id] = &cp
	return &cp, nil
}

func (f *fakeTemplateRepo) ListTemplates(_ context.Context, _ *gorm.DB, userID string) ([]domain.Template, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := []domain.Template{}
	for i := 0; i < f.nextID; i++ {
		id := string(rune('a' + i))
		if t, ok := f.rows[id]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) GetTemplate(_ context.Context, _ *gorm.DB, id, userID string) (*domain.Template, error) {
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTemplateRepo) UpdateTemplate(_ context.Context, _ *gorm.DB, id, userID string, t *domain.Template) error {
	old, ok := f.rows[id]
	if !ok || old.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	cp := *t
	cp.ID = id
	cp.UserID = userID
	f.rows[id] = &cp
	return nil
}

func (f *fakeTemplateRepo) DeleteTemplate(_ context.Context, _ *gorm.DB, id, userID string) error {
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTemplateRepo) CountTemplates(_ context.Context, _ *gorm.DB, userID string) (int64, error) {
	n := int64(0)
	for _, t := range f.rows {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTemplateRepo) ListTemplatesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Template, error) {
	all, err := f.ListTemplates(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []domain.Template{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func TestTemplateService_CreateGeneratesLabel(t *testing.T) {
	svc := NewTemplateService(nil, newFakeTemplateRepo())

	got, err := svc.Create(context.Background(), "u1", TemplateInput{
		Body:     "We repair all the cars in town, come visit us",
		Keywords: []string{"car", "repair"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Label != "We Repair All Cars Town Come" {
		t.Fatalf("generated label = %q", got.Label)
	}
}

func TestTemplateService_CreateKeepsExplicitLabel(t *testing.T) {
	svc := NewTemplateService(nil, newFakeTemplateRepo())

	got, err := svc.Create(context.Background(), "u1", TemplateInput{
		Label:    "  Garage   pitch ",
		Body:     "Visit our garage",
		Keywords: []string{"garage"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Label != "Garage pitch" {
		t.Fatalf("label = %q, want normalized explicit label", got.Label)
	}
}

func TestTemplateService_CreateRejectsEmptyBody(t *testing.T) {
	svc := NewTemplateService(nil, newFakeTemplateRepo())

	if _, err := svc.Create(context.Background(), "u1", TemplateInput{Body: "   "}); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("err = %v, want ErrInvalidTemplate", err)
	}
}

func TestTemplateService_GetNotFound(t *testing.T) {
	svc := NewTemplateService(nil, newFakeTemplateRepo())

	if _, err := svc.Get(context.Background(), "u1", "missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
}

func TestTemplateService_UpdateAndOwnership(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(nil, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", TemplateInput{Label: "Old", Body: "old body", Keywords: []string{"old"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, "u1", created.ID, TemplateInput{Label: "New", Body: "new body", Keywords: []string{"new"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Label != "New" || updated.Body != "new body" {
		t.Fatalf("updated = %+v", updated)
	}

	// Another user cannot touch the row.
	if _, err := svc.Update(ctx, "u2", created.ID, TemplateInput{Body: "hijack"}); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("cross-user update err = %v, want ErrTemplateNotFound", err)
	}
	if err := svc.Delete(ctx, "u2", created.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("cross-user delete err = %v, want ErrTemplateNotFound", err)
	}
	if err := svc.Delete(ctx, "u1", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestTemplateService_ListPageDefaults(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(nil, repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, "u1", TemplateInput{Label: "T", Body: "body", Keywords: []string{"k"}}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, total, err := svc.ListPage(ctx, "u1", 0, -1) // invalid inputs fall back to defaults
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 5 || len(items) != 5 {
		t.Fatalf("total = %d, len = %d, want 5/5", total, len(items))
	}

	items, total, err = svc.ListPage(ctx, "u1", 2, 3)
	if err != nil {
		t.Fatalf("ListPage page 2: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("page 2: total = %d, len = %d, want 5/2", total, len(items))
	}
}

func TestTemplateService_ExportRoundTrip(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(nil, repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", TemplateInput{
		Label:    "Garage",
		Body:     "Visit {url} today",
		Keywords: []string{"car", "-sold"},
		Variants: []string{"Swing by {url}"},
		Category: "automotive",
		URL:      "https://garage.example",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := svc.Export(ctx, "u1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("exported %d items, want 1", len(out))
	}
	e := out[0]
	if e.Label != "Garage" || e.Body != "Visit {url} today" || e.Category != "automotive" {
		t.Fatalf("export = %+v", e)
	}
	if len(e.Keywords) != 2 || e.Keywords[1] != "-sold" {
		t.Fatalf("keywords = %v", e.Keywords)
	}
	if len(e.Variants) != 1 || e.Variants[0] != "Swing by {url}" {
		t.Fatalf("variants = %v", e.Variants)
	}
}

func TestTemplateService_ImportSkipsInvalid(t *testing.T) {
	repo := newFakeTemplateRepo()
	svc := NewTemplateService(nil, repo)

	imported, skipped, err := svc.Import(context.Background(), "u1", []TemplateInput{
		{Label: "Good", Body: "fine body", Keywords: []string{"k"}},
		{Label: "Bad", Body: "   "}, // empty body
		{Label: "Also good", Body: "another body"},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported != 2 || skipped != 1 {
		t.Fatalf("imported/skipped = %d/%d, want 2/1", imported, skipped)
	}
}

func TestTemplateService_ImportAllInvalid(t *testing.T) {
	svc := NewTemplateService(nil, newFakeTemplateRepo())

	_, skipped, err := svc.Import(context.Background(), "u1", []TemplateInput{
		{Body: ""}, {Body: "  "},
	})
	if !errors.Is(err, ErrEmptyImport) {
		t.Fatalf("err = %v, want ErrEmptyImport", err)
	}
	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}
}

func TestTemplateService_ClipLabel(t *testing.T) {
	svc := NewTemplateService(nil, newFakeTemplateRepo())
	svc.LabelMaxLen = 5

	got, err := svc.Create(context.Background(), "u1", TemplateInput{
		Label: "abcdefghij",
		Body:  "body",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Label != "abcde" {
		t.Fatalf("label = %q, want clipped to 5 runes", got.Label)
	}
}
