package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

// HandleAPIError maps application errors to HTTP responses. The body carries
// the message under an error key, which clients surface as-is.
func HandleAPIError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status = http.StatusNotFound
		message = "Resource not found"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid credentials"
	case errors.Is(err, apperrors.ErrAccountBlocked):
		status = http.StatusForbidden
		message = "Account is blocked"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Authentication required"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
		message = "Permission denied"
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		status = http.StatusBadRequest
		message = "Validation failed"
	case errors.Is(err, apperrors.ErrResourceAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
		message = "Resource already exists"
	}

	// A CustomError carries a caller-facing message; prefer it over the
	// generic one.
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	c.JSON(status, gin.H{"error": message})
}
