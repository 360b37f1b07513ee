package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admin-console-api/internal/auth"
	"github.com/admin-console-api/internal/service"
	"github.com/admin-console-api/internal/shell"
	"github.com/admin-console-api/internal/userview"
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	var (
		inputErr  *service.InputError
		inviteErr *service.InviteError
	)
	switch {
	case errors.As(err, &inputErr),
		errors.Is(err, userview.ErrUnknownSortKey),
		errors.Is(err, userview.ErrUnknownDirection),
		errors.Is(err, service.ErrInvalidTheme),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrUnknownResource),
		errors.Is(err, shell.ErrInvalidTheme),
		errors.Is(err, shell.ErrInvalidPage),
		errors.Is(err, shell.ErrUnknownAction),
		errors.Is(err, shell.ErrMissingTarget),
		errors.Is(err, auth.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUpdateFailed), errors.As(err, &inviteErr):
		return http.StatusBadGateway
	case errors.Is(err, auth.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body. Unmapped errors are not leaked.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()

	var loadErr *service.LoadError
	if status == http.StatusInternalServerError && !errors.As(err, &loadErr) {
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
