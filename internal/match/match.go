// Package match provides a simple, deterministic suggestion engine that
// scores a library of user-authored reply templates against a social-media
// post and returns an ordered, usage-aware shortlist. It is intentionally
// small and dependency-free, but engineered with production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - Clear, documented types and functional options (Option pattern)
//   - Keyword scoring with inclusion and exclusion terms
//   - Usage-aware ranking that rotates recently used templates to the back
//   - Deterministic ordering (stable tie-breaks on template id and variant)
//   - Canned fallbacks so a run never produces zero suggestions
//
// The engine is pure with respect to its inputs: concurrent calls are safe
// because nothing is shared or mutated between runs.
package match

import "time"

// Template is the engine-facing view of a stored reply template. Callers
// convert their persistence model into this shape; keywords are assumed to
// be validated (trimmed, non-empty) at the store boundary.
type Template struct {
	// ID is an opaque stable identifier.
	ID string
	// Label is the display name shown alongside suggestions.
	Label string
	// Bodies holds the base body at index 0 followed by alternate variants.
	Bodies []string
	// Keywords are match terms; a leading '-' marks an exclusion term.
	Keywords []string
	// Category is an optional grouping id used for the preference bonus.
	Category string
	// URL optionally overrides the caller-level default link.
	URL string
}

// Usage is one past acceptance of a template variant within the caller's
// conversational group. Callers pass the records for the group being
// analyzed; the engine applies the lookback window itself.
type Usage struct {
	TemplateID   string
	VariantIndex int
	At           time.Time
}

// Suggestion is a ranked, fully rendered reply recommendation.
type Suggestion struct {
	Text          string `json:"text"`
	TemplateID    string `json:"template_id,omitempty"`
	TemplateLabel string `json:"template_label,omitempty"`
	VariantIndex  int    `json:"variant_index"`
	IsFallback    bool   `json:"is_fallback,omitempty"`
	IsLimitNotice bool   `json:"is_limit_notice,omitempty"`
}

// Candidate is an intermediate match record produced by the collector and
// consumed by the ranker. It is exported so callers can unit-test ranking
// against hand-built inputs; it is never persisted.
type Candidate struct {
	Template     Template
	VariantIndex int
	Text         string
	Score        int
	RecentlyUsed bool
	LastUsedAt   time.Time
	hasLastUsed  bool
}

// ----------------------------------------------------------------------------
// Options

// Option configures an Engine.
type Option func(*config)

type config struct {
	resultLimit int
	lookback    time.Duration
}

func defaultConfig() config {
	return config{
		resultLimit: 3,
		lookback:    24 * time.Hour,
	}
}

// WithResultLimit caps the number of suggestions returned per run.
// Values < 1 are ignored.
func WithResultLimit(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.resultLimit = n
		}
	}
}

// WithLookback sets the trailing window within which a past acceptance makes
// a candidate "recently used". Non-positive values are ignored.
func WithLookback(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.lookback = d
		}
	}
}

// Engine runs the suggestion pipeline. The zero value is not usable;
// construct with New.
type Engine struct {
	cfg config
}

// New returns an Engine with the given options applied over the defaults
// (3 results, 24 hour lookback).
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{cfg: cfg}
}

// ResultLimit reports the configured result cap.
func (e *Engine) ResultLimit() int { return e.cfg.resultLimit }

// Lookback reports the configured usage-recency window.
func (e *Engine) Lookback() time.Duration { return e.cfg.lookback }

// Request carries the per-run inputs for Suggest.
type Request struct {
	// PostText is the raw text of the post being replied to.
	PostText string
	// Templates is the caller's template library.
	Templates []Template
	// Usage holds past acceptances for the current group.
	Usage []Usage
	// PreferredCategory, when set, grants matching templates a score bonus.
	PreferredCategory string
	// DefaultURL is substituted into placeholders for templates without
	// their own URL, and appended to fallback suggestions.
	DefaultURL string
	// Now anchors the lookback window; the zero value means time.Now().
	Now time.Time
}

// Suggest runs the full pipeline: tokenize, collect, rank, render, with the
// canned fallback path when nothing matches. The result is never empty.
func (e *Engine) Suggest(req Request) []Suggestion {
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tokens := Tokenize(req.PostText)
	cands := Collect(req.Templates, tokens, req.PreferredCategory)
	if len(cands) == 0 {
		return Fallbacks(req.PostText, req.DefaultURL)
	}

	MarkUsage(cands, req.Usage, e.cfg.lookback, now)
	ranked := Rank(cands, e.cfg.resultLimit)

	out := make([]Suggestion, 0, len(ranked))
	for _, c := range ranked {
		url := c.Template.URL
		if url == "" {
			url = req.DefaultURL
		}
		out = append(out, Suggestion{
			Text:          Render(c.Text, url),
			TemplateID:    c.Template.ID,
			TemplateLabel: c.Template.Label,
			VariantIndex:  c.VariantIndex,
		})
	}
	return out
}
