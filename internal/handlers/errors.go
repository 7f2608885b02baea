package handlers

import (
	"errors"
	"net/http"

	"github.com/contactbook/contactbook-api/internal/services"
	"github.com/contactbook/contactbook-api/internal/validation"
	apperrors "github.com/contactbook/contactbook-api/pkg/errors"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondServiceError maps a service error onto an HTTP response. form names the
// submission for validation metrics; notFound is the 404 message.
func respondServiceError(c *gin.Context, form, notFound string, err error) {
	if errs, ok := validation.AsFieldErrors(err); ok {
		respondValidationFailed(c, form, errs)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, notFound, err)
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, "Resource already exists", err)
	case services.IsUnavailable(err):
		respondError(c, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		logger.LogError(err, "Unhandled service error", zap.String("form", form), zap.String("path", c.FullPath()))
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
