// Suggestion HTTP handlers.
//
// This file exposes the reply-suggestion endpoints:
//   - POST /suggestions          (score a post and return ranked replies)
//   - POST /suggestions/accept   (record that a suggestion was posted)
//   - POST /suggestions/dismiss  (discard a suggestion without recording)
//   - GET  /quota                (report rolling-window standing)
//
// Handlers are transport-thin:
//   - validate & normalize inputs (including newline and length constraints)
//   - delegate to application services (SuggestionService, UsageService)
//   - implement idempotency semantics on the accept path
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// accept exists for (user, group, key), the handler returns that recorded
// usage and sets `Idempotency-Replayed: true`, so retried accepts never
// double-count in the ranking history.
package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/philallum/AdReply-sub001/internal/domain"
	"github.com/philallum/AdReply-sub001/internal/http/middleware"
	"github.com/philallum/AdReply-sub001/internal/match"
	"github.com/philallum/AdReply-sub001/internal/repo"
	"github.com/philallum/AdReply-sub001/internal/services"
)

//
// DTOs
//

// SuggestRequest is the JSON payload for scoring a post.
type SuggestRequest struct {
	// PostText is the social-media post to reply to. An empty post still
	// yields canned fallback suggestions.
	PostText string `json:"post_text" example:"My car broke down again, any good garages nearby?"`
	// GroupID identifies the conversation context; recent usage inside it
	// demotes repeated templates.
	GroupID string `json:"group_id" example:"fb-group-42"`
	// PreferredCategory optionally overrides the stored preference for this
	// request only.
	PreferredCategory string `json:"preferred_category,omitempty" example:"automotive"`
	// DefaultURL optionally overrides the stored default link for this
	// request only.
	DefaultURL string `json:"default_url,omitempty" example:"https://garage.example"`
}

// SuggestResponse is the JSON envelope for a suggestion run.
type SuggestResponse struct {
	Suggestions []match.Suggestion `json:"suggestions"`
}

// AcceptRequest is the JSON payload for recording an accepted suggestion.
type AcceptRequest struct {
	TemplateID   string `json:"template_id" binding:"required" format:"uuid"`
	VariantIndex int    `json:"variant_index"`
	GroupID      string `json:"group_id" binding:"required" example:"fb-group-42"`
}

// AcceptResponse wraps the usage record written for an accepted suggestion.
type AcceptResponse struct {
	Usage *domain.UsageRecord `json:"usage"`
}

// DismissRequest is the JSON payload for discarding a suggestion.
type DismissRequest struct {
	TemplateID string `json:"template_id" binding:"required" format:"uuid"`
}

// DismissResponse reports whether a pending ignore timer was cancelled.
type DismissResponse struct {
	Cancelled bool `json:"cancelled"`
}

//
// Helpers
//

// maxPostRunes caps incoming post text; anything longer is junk input.
const maxPostRunes = 8000

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizePost normalizes post text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizePost(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// observeSuggestions feeds the served batch into the Prometheus counters.
func observeSuggestions(out []match.Suggestion) {
	var matched, fallback int
	for _, s := range out {
		switch {
		case s.IsLimitNotice:
			middleware.ObserveQuotaRejection()
		case s.IsFallback:
			fallback++
		default:
			matched++
		}
	}
	middleware.ObserveSuggestions("matched", matched)
	middleware.ObserveSuggestions("fallback", fallback)
}

// getIdempotencyKey extracts an idempotency key if an upstream middleware has
// already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func getIdempotencyKey(c *gin.Context) (string, bool) {
	if k, ok := middleware.GetIdempotencyKey(c); ok {
		return k, true
	}
	if v := strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey)); v != "" {
		return v, true
	}
	return "", false
}

//
// Handlers
//

// Suggest godoc
// @ID          suggest
// @Summary     Suggest replies for a post
// @Description Scores the user's template library against the post text and returns up to
// @Description three ranked, rendered reply suggestions. When nothing matches, canned
// @Description fallback suggestions are returned; when the free-tier quota is exhausted,
// @Description a single limit notice is returned instead.
// @Tags        Suggestions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SuggestRequest  true  "Post payload"
//
// @Success     200  {object}  handlers.SuggestResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /suggestions [post]
func (h *Handlers) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	post := sanitizePost(req.PostText)
	if utf8.RuneCountInString(post) > maxPostRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post_text too long")
		return
	}

	out := h.sugSvc.Suggest(c.Request.Context(), userID(c), strings.TrimSpace(req.GroupID), post, services.SuggestOverrides{
		PreferredCategory: strings.TrimSpace(req.PreferredCategory),
		DefaultURL:        strings.TrimSpace(req.DefaultURL),
	})
	observeSuggestions(out)
	ok(c, http.StatusOK, SuggestResponse{Suggestions: out})
}

// AcceptSuggestion godoc
// @ID          acceptSuggestion
// @Summary     Record an accepted suggestion
// @Description Appends a usage record for the posted template variant so subsequent runs
// @Description in the same group rotate away from it. Supports idempotency via the
// @Description Idempotency-Key header (same key → same recorded usage).
// @Tags        Suggestions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.AcceptRequest  true  "Acceptance payload"
//
// @Success     200  {object}  handlers.AcceptResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Template not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /suggestions/accept [post]
func (h *Handlers) AcceptSuggestion(c *gin.Context) {
	ctx := c.Request.Context()

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template_id and group_id required")
		return
	}
	if _, err := uuid.Parse(req.TemplateID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template_id must be a UUID")
		return
	}
	groupID := strings.TrimSpace(req.GroupID)
	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := getIdempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.usageSvc.(*services.UsageService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, groupID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetUsage(ctx, svc.DB, rec.UsageID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, AcceptResponse{Usage: prev})
					return
				}
			}
		}
	}

	rec, err := h.usageSvc.Accept(ctx, currentUser, req.TemplateID, req.VariantIndex, groupID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		case errors.Is(err, services.ErrBadVariant):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "variant_index out of range")
		case errors.Is(err, services.ErrEmptyGroup):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "group_id required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeAcceptFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.usageSvc.(*services.UsageService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, groupID, idemKey, rec.ID, http.StatusOK, ttl)
		}
	}

	ok(c, http.StatusOK, AcceptResponse{Usage: rec})
}

// DismissSuggestion godoc
// @ID          dismissSuggestion
// @Summary     Dismiss a suggestion
// @Description Cancels the pending ignore timer for a template the user chose not to post.
// @Tags        Suggestions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.DismissRequest  true  "Dismissal payload"
//
// @Success     200  {object}  handlers.DismissResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /suggestions/dismiss [post]
func (h *Handlers) DismissSuggestion(c *gin.Context) {
	var req DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template_id required")
		return
	}
	ok(c, http.StatusOK, DismissResponse{Cancelled: h.usageSvc.Dismiss(req.TemplateID)})
}

// GetQuota godoc
// @ID          getQuota
// @Summary     Report quota standing
// @Description Returns the caller's rolling-window usage without consuming a request.
// @Tags        Quota
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  quota.State
// @Router      /quota [get]
func (h *Handlers) GetQuota(c *gin.Context) {
	ok(c, http.StatusOK, h.sugSvc.QuotaState(c.Request.Context(), userID(c)))
}
