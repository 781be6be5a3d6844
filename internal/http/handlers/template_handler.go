// Template HTTP handlers.
//
// This file exposes REST endpoints for the template library:
//   - POST   /templates          (create)
//   - GET    /templates          (list, paginated, ETag support)
//   - GET    /templates/{id}     (fetch one)
//   - PUT    /templates/{id}     (replace contents)
//   - DELETE /templates/{id}     (remove)
//   - GET    /templates/export   (export library as JSON)
//   - POST   /templates/import   (bulk import, invalid entries skipped)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/philallum/AdReply-sub001/internal/domain"
	"github.com/philallum/AdReply-sub001/internal/match"
	"github.com/philallum/AdReply-sub001/internal/quota"
	"github.com/philallum/AdReply-sub001/internal/repo"
	"github.com/philallum/AdReply-sub001/internal/services"
	"github.com/philallum/AdReply-sub001/internal/utils"
)

//
// Service contracts (context-aware)
//

// TemplateManager defines template-library operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TemplateManager interface {
	// Create validates and stores a new template for userID.
	Create(ctx context.Context, userID string, in services.TemplateInput) (*domain.Template, error)
	// Get fetches a single template owned by userID.
	Get(ctx context.Context, userID, id string) (*domain.Template, error)
	// ListPage returns a page of templates for a user and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Template, int64, error)
	// Update replaces the contents of a template owned by userID.
	Update(ctx context.Context, userID, id string, in services.TemplateInput) (*domain.Template, error)
	// Delete removes a template owned by userID.
	Delete(ctx context.Context, userID, id string) error
	// Export returns the user's full library in portable form.
	Export(ctx context.Context, userID string) ([]services.TemplateInput, error)
	// Import creates templates from a portable payload, skipping invalid rows.
	Import(ctx context.Context, userID string, items []services.TemplateInput) (imported, skipped int, err error)
}

// Suggester defines the suggestion pipeline operations consumed by HTTP
// handlers.
type Suggester interface {
	// Suggest runs the matching pipeline for a post and returns ranked replies.
	Suggest(ctx context.Context, userID, groupID, postText string, over services.SuggestOverrides) []match.Suggestion
	// QuotaState reports the caller's rolling-window standing without
	// consuming a request.
	QuotaState(ctx context.Context, userID string) quota.State
}

// UsageRecorder defines acceptance/dismissal operations consumed by HTTP
// handlers.
type UsageRecorder interface {
	// Accept records that a suggested template variant was posted in a group.
	Accept(ctx context.Context, userID, templateID string, variantIndex int, groupID string) (*domain.UsageRecord, error)
	// Dismiss cancels the pending ignore timer for a template.
	Dismiss(templateID string) bool
}

// PreferenceManager defines preference read/write operations consumed by
// HTTP handlers.
type PreferenceManager interface {
	Get(ctx context.Context, userID string) (*domain.Preference, error)
	Set(ctx context.Context, userID, category, defaultURL string) (*domain.Preference, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for suggestions, templates, usage, and
// preferences. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	tmplSvc  TemplateManager
	sugSvc   Suggester
	usageSvc UsageRecorder
	prefSvc  PreferenceManager
}

// New constructs and returns a Handlers instance bound to the given services.
func New(tmplSvc TemplateManager, sugSvc Suggester, usageSvc UsageRecorder, prefSvc PreferenceManager) *Handlers {
	return &Handlers{tmplSvc: tmplSvc, sugSvc: sugSvc, usageSvc: usageSvc, prefSvc: prefSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// TemplateRequest is the JSON payload for creating or replacing a template.
type TemplateRequest struct {
	// Label optionally names the template; one is generated from the body
	// when empty.
	Label string `json:"label" example:"Garage pitch"`
	// Body is the reply text. May contain {url} or %site% placeholders.
	Body string `json:"body" binding:"required,min=1" example:"We fix all makes, visit {url}"`
	// Keywords are match terms; prefix a term with '-' to exclude posts
	// containing it.
	Keywords []string `json:"keywords" example:"car,repair,-sold"`
	// Variants are alternate bodies rotated across suggestions.
	Variants []string `json:"variants,omitempty"`
	// Category groups templates for the preferred-category bonus.
	Category string `json:"category,omitempty" example:"automotive"`
	// URL overrides the account default link for this template.
	URL string `json:"url,omitempty" example:"https://garage.example"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListTemplatesResponse wraps a page of templates and pagination information.
type ListTemplatesResponse struct {
	Templates  []domain.Template `json:"templates"`
	Pagination Pagination        `json:"pagination"`
}

// ImportResponse reports the outcome of a bulk template import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

func (r TemplateRequest) input() services.TemplateInput {
	return services.TemplateInput{
		Label:    r.Label,
		Body:     r.Body,
		Keywords: r.Keywords,
		Variants: r.Variants,
		Category: r.Category,
		URL:      r.URL,
	}
}

//
// Handlers
//

// CreateTemplate godoc
// @ID          createTemplate
// @Summary     Create a template
// @Description Creates a reply template for the current user and returns the stored resource.
// @Tags        Templates
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.TemplateRequest  true  "Template payload"
//
// @Success     201  {object}  domain.Template
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /templates [post]
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	t, err := h.tmplSvc.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		if errors.Is(err, services.ErrInvalidTemplate) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template body required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, t)
}

// ListTemplates godoc
// @ID          listTemplates
// @Summary     List templates (paginated)
// @Description Returns a page of the user's templates. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListTemplatesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates [get]
func (h *Handlers) ListTemplates(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.tmplSvc.(*services.TemplateService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.TemplatesStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"templates:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.tmplSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListTemplatesResponse{
		Templates: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetTemplate godoc
// @ID          getTemplate
// @Summary     Fetch a template
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
//
// @Success     200  {object} domain.Template
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Router      /templates/{id} [get]
func (h *Handlers) GetTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}

	t, err := h.tmplSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, t)
}

// UpdateTemplate godoc
// @ID          updateTemplate
// @Summary     Replace a template's contents
// @Tags        Templates
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
// @Param       body       body    handlers.TemplateRequest  true  "Replacement payload"
//
// @Success     200  {object} domain.Template
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates/{id} [put]
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	t, err := h.tmplSvc.Update(c.Request.Context(), userID(c), id, req.input())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		case errors.Is(err, services.ErrInvalidTemplate):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template body required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTemplate godoc
// @ID          deleteTemplate
// @Summary     Delete a template
// @Tags        Templates
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Template ID (UUID)"     format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Router      /templates/{id} [delete]
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}

	if err := h.tmplSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}

// ExportTemplates godoc
// @ID          exportTemplates
// @Summary     Export the template library
// @Description Returns the user's full library in a portable JSON form suitable for re-import.
// @Tags        Templates
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {array}  services.TemplateInput
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates/export [get]
func (h *Handlers) ExportTemplates(c *gin.Context) {
	items, err := h.tmplSvc.Export(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="templates.json"`)
	ok(c, http.StatusOK, items)
}

// ImportTemplates godoc
// @ID          importTemplates
// @Summary     Import templates in bulk
// @Description Creates one template per valid entry; invalid entries are skipped and counted.
// @Tags        Templates
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    []services.TemplateInput  true  "Exported library payload"
//
// @Success     200  {object} handlers.ImportResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request / nothing importable"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /templates/import [post]
func (h *Handlers) ImportTemplates(c *gin.Context) {
	var items []services.TemplateInput
	if err := c.ShouldBindJSON(&items); err != nil || len(items) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "expected a non-empty JSON array of templates")
		return
	}

	imported, skipped, err := h.tmplSvc.Import(c.Request.Context(), userID(c), items)
	if err != nil {
		if errors.Is(err, services.ErrEmptyImport) {
			fail(c, http.StatusBadRequest, ErrCodeImportFailed, "no valid templates in payload")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeImportFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ImportResponse{Imported: imported, Skipped: skipped})
}
