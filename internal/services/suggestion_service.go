// Package services – SuggestionService
//
// This file implements the SuggestionService, the heart of the reply
// pipeline: it gates requests on the usage quota, loads the user's template
// library and recent usage history, feeds both to the matching engine, and
// arms ignore timers for the templates it surfaces. Collaborator failures
// degrade gracefully so the endpoint never returns an empty hand: a broken
// quota backend fails open, a broken usage query ranks without history, and
// a broken template store falls through to canned fallbacks.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
	"github.com/philallum/AdReply-sub001/internal/match"
	"github.com/philallum/AdReply-sub001/internal/quota"
	"github.com/philallum/AdReply-sub001/internal/repo"
)

// SuggestionService orchestrates a single suggestion request end to end.
type SuggestionService struct {
	// DB is the GORM handle shared with the repositories.
	DB *gorm.DB
	// Engine performs the pure scoring, ranking and rendering.
	Engine *match.Engine
	// Quota tracks request counts over the rolling window.
	Quota quota.Window
	// FreeTierMax is the request allowance inside the window.
	FreeTierMax int
	// Window is the rolling period used for both quota and usage lookback.
	Window time.Duration
	// Ignore re-arms suppression timers for surfaced templates.
	Ignore *IgnoreRegistry
	// DefaultURL is the fallback promotional URL when the user has none.
	DefaultURL string
}

// SuggestOverrides carries optional per-request preference overrides. Empty
// fields fall back to the caller's stored preference.
type SuggestOverrides struct {
	PreferredCategory string
	DefaultURL        string
}

// Suggest runs the full pipeline for one post. It returns a non-empty list
// of suggestions, or a single limit-notice suggestion when the quota is
// exhausted. It does not return an error: every failure mode degrades.
func (s *SuggestionService) Suggest(ctx context.Context, userID, groupID, postText string, over SuggestOverrides) []match.Suggestion {
	tracer := otel.Tracer("services/SuggestionService")
	ctx, span := tracer.Start(ctx, "SuggestionService.Suggest",
		trace.WithAttributes(attribute.String("group.id", groupID)),
	)
	defer span.End()

	now := time.Now().UTC()

	pref, err := repo.GetPreference(ctx, s.DB, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("preference load failed; using defaults")
		pref = &domain.Preference{UserID: userID}
	}

	if !pref.Unmetered {
		if notice, limited := s.gate(ctx, userID, now); limited {
			return []match.Suggestion{notice}
		}
	}

	templates := s.loadTemplates(ctx, userID)
	usage := s.loadUsage(ctx, userID, groupID, now)

	category := pref.PreferredCategory
	if over.PreferredCategory != "" {
		category = over.PreferredCategory
	}
	defaultURL := pref.DefaultURL
	if over.DefaultURL != "" {
		defaultURL = over.DefaultURL
	}
	if defaultURL == "" {
		defaultURL = s.DefaultURL
	}

	out := s.Engine.Suggest(match.Request{
		PostText:          postText,
		Templates:         templates,
		Usage:             usage,
		PreferredCategory: category,
		DefaultURL:        defaultURL,
		Now:               now,
	})

	if s.Ignore != nil {
		for _, sg := range out {
			if sg.TemplateID != "" {
				s.Ignore.Schedule(sg.TemplateID)
			}
		}
	}
	return out
}

// gate checks the rolling-window quota and records the request. A quota
// backend failure fails open. The second return is true when the user is
// over the limit.
func (s *SuggestionService) gate(ctx context.Context, userID string, now time.Time) (match.Suggestion, bool) {
	used, err := s.Quota.Count(ctx, userID, s.Window)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("quota count failed; allowing request")
		return match.Suggestion{}, false
	}
	if used >= s.FreeTierMax {
		resetAt := now.Add(s.Window)
		if oldest, oerr := s.Quota.Oldest(ctx, userID, s.Window); oerr == nil && oldest != nil {
			resetAt = oldest.Add(s.Window)
		}
		return match.Suggestion{
			Text:          quota.NoticeMessage(resetAt, now),
			IsLimitNotice: true,
		}, true
	}
	if err := s.Quota.Record(ctx, userID, now); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("quota record failed")
	}
	return match.Suggestion{}, false
}

// loadTemplates fetches the user's library, converting rows to engine input
// and skipping rows with malformed keyword or variant payloads.
func (s *SuggestionService) loadTemplates(ctx context.Context, userID string) []match.Template {
	rows, err := repo.ListTemplates(ctx, s.DB, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("template load failed; falling back")
		return nil
	}
	out := make([]match.Template, 0, len(rows))
	for i := range rows {
		t := &rows[i]
		kws, err := t.KeywordList()
		if err != nil {
			log.Warn().Err(err).Str("template_id", t.ID).Msg("skipping template with bad keywords")
			continue
		}
		bodies, err := t.VariantBodies()
		if err != nil {
			log.Warn().Err(err).Str("template_id", t.ID).Msg("skipping template with bad variants")
			continue
		}
		out = append(out, match.Template{
			ID:       t.ID,
			Label:    t.Label,
			Bodies:   bodies,
			Keywords: kws,
			Category: t.Category,
			URL:      t.URL,
		})
	}
	return out
}

// loadUsage fetches the recent usage history for the group, degrading to
// no history on error.
func (s *SuggestionService) loadUsage(ctx context.Context, userID, groupID string, now time.Time) []match.Usage {
	if groupID == "" {
		return nil
	}
	rows, err := repo.ListUsageSince(ctx, s.DB, userID, groupID, now.Add(-s.Window))
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("group_id", groupID).Msg("usage load failed; ranking without history")
		return nil
	}
	out := make([]match.Usage, 0, len(rows))
	for _, u := range rows {
		out = append(out, match.Usage{
			TemplateID:   u.TemplateID,
			VariantIndex: u.VariantIndex,
			At:           u.UsedAt,
		})
	}
	return out
}

// QuotaState reports the user's current quota standing without consuming
// a request. Backend failures report a fully available window.
func (s *SuggestionService) QuotaState(ctx context.Context, userID string) quota.State {
	pref, err := repo.GetPreference(ctx, s.DB, userID)
	if err == nil && pref.Unmetered {
		return quota.Unmetered()
	}

	used, err := s.Quota.Count(ctx, userID, s.Window)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("quota count failed; reporting open window")
		return quota.Evaluate(0, s.FreeTierMax, nil, s.Window)
	}
	var oldest *time.Time
	if used > 0 {
		if o, oerr := s.Quota.Oldest(ctx, userID, s.Window); oerr == nil {
			oldest = o
		}
	}
	return quota.Evaluate(used, s.FreeTierMax, oldest, s.Window)
}
