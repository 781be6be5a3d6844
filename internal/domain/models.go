// Package domain defines the persistence models for reply templates, usage
// records, and caller preferences. These types are mapped with GORM and form
// the core data layer of the suggestion service.
package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Validation errors returned by NewTemplate and the column decoders.
var (
	// ErrEmptyBody indicates a template without any reply text.
	ErrEmptyBody = errors.New("template body is empty")

	// ErrBadKeywords indicates a stored keyword column that does not decode
	// to a JSON string array.
	ErrBadKeywords = errors.New("template keywords are malformed")

	// ErrBadVariants indicates a stored variant column that does not decode
	// to a JSON string array.
	ErrBadVariants = errors.New("template variants are malformed")
)

// Template is a user-authored reply unit. Keywords and alternate bodies are
// stored as JSON-encoded string arrays so the schema stays portable across
// SQLite deployments.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owning user; indexed for retrieval.
//   - Label: display name shown alongside suggestions.
//   - Body: reply text, may contain {url} or %site% placeholders.
//   - Keywords: JSON array of match terms; a leading '-' marks an exclusion.
//   - Variants: JSON array of alternate bodies (variant 0 is Body itself).
//   - Category: optional grouping id used for the category bonus.
//   - URL: optional per-template link override.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type Template struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_templates"`
	Label     string         `json:"label"      gorm:"type:varchar(255);not null"`
	Body      string         `json:"body"       gorm:"type:text;not null"`
	Keywords  string         `json:"keywords"   gorm:"type:text;not null;default:'[]'"`
	Variants  string         `json:"variants,omitempty" gorm:"type:text;not null;default:'[]'"`
	Category  string         `json:"category,omitempty" gorm:"type:varchar(64);index"`
	URL       string         `json:"url,omitempty"      gorm:"type:varchar(2048)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Template.
func (Template) TableName() string { return "templates" }

// NewTemplate validates and normalizes raw template input at the store
// boundary so the matching engine can assume a well-formed keyword list.
// Keywords are trimmed and blanks dropped; the negation marker is preserved.
func NewTemplate(userID, label, body string, keywords, variants []string, category, url string) (*Template, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	vars := make([]string, 0, len(variants))
	for _, v := range variants {
		if v = strings.TrimSpace(v); v != "" {
			vars = append(vars, v)
		}
	}

	kb, err := json.Marshal(kws)
	if err != nil {
		return nil, ErrBadKeywords
	}
	vb, err := json.Marshal(vars)
	if err != nil {
		return nil, ErrBadVariants
	}

	return &Template{
		UserID:   userID,
		Label:    strings.TrimSpace(label),
		Body:     body,
		Keywords: string(kb),
		Variants: string(vb),
		Category: strings.TrimSpace(category),
		URL:      strings.TrimSpace(url),
	}, nil
}

// KeywordList decodes the stored keyword column. A row whose column was
// hand-edited into something that is not a JSON string array yields
// ErrBadKeywords; callers skip such rows rather than failing a run.
func (t *Template) KeywordList() ([]string, error) {
	return decodeStringArray(t.Keywords, ErrBadKeywords)
}

// VariantBodies returns every candidate body for this template: the base
// body first (variant index 0), followed by the decoded alternates.
func (t *Template) VariantBodies() ([]string, error) {
	alts, err := decodeStringArray(t.Variants, ErrBadVariants)
	if err != nil {
		return nil, err
	}
	return append([]string{t.Body}, alts...), nil
}

func decodeStringArray(raw string, badErr error) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, badErr
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// UsageRecord is one instance of a template variant having been accepted by
// the user inside a conversational group. Records are append-only; nothing
// in the system mutates them after insert.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: the accepting user.
//   - TemplateID: the accepted template (indexed with group for recency scans).
//   - VariantIndex: which rendered body was accepted (0 = base body).
//   - GroupID: conversation/context identifier the suggestion was used in.
//   - UsedAt: acceptance time (UTC), indexed for window queries.
type UsageRecord struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"       gorm:"type:varchar(64);not null;index"`
	TemplateID   string    `json:"template_id"   gorm:"type:char(36);not null;index:idx_group_usage,priority:2"`
	VariantIndex int       `json:"variant_index" gorm:"not null;default:0"`
	GroupID      string    `json:"group_id"      gorm:"type:varchar(128);not null;index:idx_group_usage,priority:1"`
	UsedAt       time.Time `json:"used_at"       gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for UsageRecord.
func (UsageRecord) TableName() string { return "usage_records" }

// Preference carries per-user engine settings consulted on every suggestion
// run: the preferred category (scores a bonus on matching templates), the
// default URL substituted into placeholders when a template has none, and
// the tier flag that exempts the user from the rolling quota.
type Preference struct {
	UserID            string         `json:"user_id"            gorm:"type:varchar(64);primaryKey"`
	PreferredCategory string         `json:"preferred_category" gorm:"type:varchar(64)"`
	DefaultURL        string         `json:"default_url"        gorm:"type:varchar(2048)"`
	Unmetered         bool           `json:"unmetered"          gorm:"not null;default:false"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Preference.
func (Preference) TableName() string { return "preferences" }
