// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"globe_backend/platform/apperr"
	"globe_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// ContextLoggerKey is the gin context key holding the request-scoped logger.
const ContextLoggerKey = "logger"

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// HandleError maps domain errors to HTTP responses.
// If the error chain contains a typed *apperr.Error, its Kind determines the
// HTTP status code. Anything else is an unexpected failure: it is logged and
// answered with 500 without leaking internals.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		status := domainErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logError(c, status, err)
		}
		c.JSON(status, ErrorResponse{
			Error:   domainErr.Message,
			Code:    domainErr.Code,
			Details: domainErr.Details,
		})
		return true
	}

	fallback := apperr.Internal("internal server error")
	logError(c, fallback.HTTPStatus(), err)
	c.JSON(fallback.HTTPStatus(), ErrorResponse{
		Error: fallback.Message,
		Code:  fallback.Code,
	})
	return true
}

func logError(c *gin.Context, status int, err error) {
	value, ok := c.Get(ContextLoggerKey)
	if !ok {
		return
	}
	log, ok := value.(*logger.Logger)
	if !ok || log == nil {
		return
	}
	log.HTTPError(c.Request.Method, c.Request.URL.Path, status, err, c.ClientIP())
}
