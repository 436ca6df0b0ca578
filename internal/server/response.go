package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smukkama/aquasure-server/internal/alerting"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/ingest"
)

// APIError is the body of every error response
type APIError struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Details []ingest.FieldError `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: message, Code: code}})
}

func badRequest(c *gin.Context, message string) {
	abortError(c, http.StatusBadRequest, "bad_request", message)
}

// respondError maps domain errors to status codes. Anything unrecognized is
// logged and reported as 500 without its details.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *ingest.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{
			Message: "validation failed",
			Code:    "validation_failed",
			Details: verr.Errors,
		}})
	case errors.Is(err, ingest.ErrEmptyBatch),
		errors.Is(err, ingest.ErrInvalidTemplate),
		errors.Is(err, ingest.ErrUnsupportedFormat):
		badRequest(c, err.Error())
	case errors.Is(err, database.ErrNotFound):
		abortError(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, alerting.ErrInvalidTransition), errors.Is(err, database.ErrConflict):
		abortError(c, http.StatusConflict, "conflict", err.Error())
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		abortError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}
