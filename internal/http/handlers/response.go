// Package handlers implements the HTTP endpoints of the public API.
//
// This file holds the response helpers shared by every endpoint. All errors
// leave the server as an ErrorResponse envelope with a stable machine code,
// and 5xx responses are logged with request context before being written.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/philallum/AdReply-sub001/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"template not found"`
}

// fail aborts the request with an ErrorResponse. The request id is echoed
// from the X-Request-ID response header so clients can quote it in reports.
// Server-side failures (>= 500) additionally go through the request-scoped
// logger; client errors do not.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported form of fail, for callers outside this package such
// as the router's NoRoute and NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
