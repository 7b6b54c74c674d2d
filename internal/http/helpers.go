package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/backup"
	"github.com/mrlokans/deepread/internal/database/documents"
	"github.com/mrlokans/deepread/internal/highlights"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Str("path", c.FullPath()).Msg("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondServiceError maps domain errors onto status codes. data, when not
// nil, is returned alongside a persistence failure so the reader can keep
// showing the state it now has.
func respondServiceError(c *gin.Context, err error, context string, data any) {
	switch {
	case errors.Is(err, highlights.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_range"})
	case errors.Is(err, highlights.ErrInvalidColor):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_color"})
	case errors.Is(err, backup.ErrUnsupportedVersion), errors.Is(err, backup.ErrInvalidArchive):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_archive"})
	case errors.Is(err, documents.ErrNotFound):
		respondNotFound(c, "document")
	case errors.Is(err, highlights.ErrNotPersisted):
		log.Error().Err(err).Str("context", context).Msg("Change kept in memory only")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "change could not be saved", Code: "not_persisted", Details: data})
	case errors.Is(err, highlights.ErrNotLoaded):
		log.Error().Err(err).Str("context", context).Msg("Stored highlights unreadable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "highlights could not be loaded", Code: "not_loaded"})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIntParam extracts a non-negative integer from URL parameters.
// Responds with a 400 error and returns 0, false when it is not one.
func parseIntParam(c *gin.Context, paramName string) (int, bool) {
	n, err := strconv.Atoi(c.Param(paramName))
	if err != nil || n < 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return n, true
}

// queryInt reads an optional integer query parameter bounded to [1, max].
func queryInt(c *gin.Context, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
