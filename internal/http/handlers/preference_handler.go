// Preference HTTP handlers.
//
// This file exposes the REST endpoints for per-user engine preferences:
//   - GET /preferences  (read current settings, defaults when unset)
//   - PUT /preferences  (replace preferred category and default URL)
//
// Handlers in this file are transport-thin: they validate input, delegate to
// application services, and translate service errors into HTTP results. The
// unmetered tier flag is read-only here; it is an operator-managed column.
package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// UpdatePreferencesRequest is the JSON payload for replacing preferences.
type UpdatePreferencesRequest struct {
	// PreferredCategory boosts matching templates of this category.
	PreferredCategory string `json:"preferred_category" example:"automotive"`
	// DefaultURL fills placeholders in templates without their own link.
	DefaultURL string `json:"default_url" example:"https://garage.example"`
}

// GetPreferences godoc
// @ID          getPreferences
// @Summary     Read preferences
// @Description Returns the caller's stored preferences, or zero-value defaults when unset.
// @Tags        Preferences
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} domain.Preference
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /preferences [get]
func (h *Handlers) GetPreferences(c *gin.Context) {
	p, err := h.prefSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdatePreferences godoc
// @ID          updatePreferences
// @Summary     Replace preferences
// @Description Stores the preferred category and default URL for the caller.
// @Tags        Preferences
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.UpdatePreferencesRequest  true  "Preferences payload"
//
// @Success     200  {object} domain.Preference
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /preferences [put]
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	defaultURL := strings.TrimSpace(req.DefaultURL)
	if defaultURL != "" {
		u, err := url.Parse(defaultURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "default_url must be an absolute http(s) URL")
			return
		}
	}

	p, err := h.prefSvc.Set(c.Request.Context(), userID(c), strings.TrimSpace(req.PreferredCategory), defaultURL)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}
