package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/auth"
	"github.com/admin-console-api/internal/service"
	"github.com/admin-console-api/internal/validation"
)

const defaultHeartbeat = 30 * time.Second

// AuthHandler handles sign-in, sign-out and the session stream
type AuthHandler struct {
	services  *service.Services
	validator *validation.Validator
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services:  services,
		validator: validation.NewValidator(),
		heartbeat: defaultHeartbeat,
		log:       log.With().Str("handler", "auth").Logger(),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type providerRequest struct {
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirectUri"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	if err := h.services.Auth.Allow(c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if errs := h.validator.ValidateCredentials(req.Email, req.Password); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message, "errors": errs})
		return
	}

	session, err := h.services.Auth.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.signInFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ProviderLogin handles POST /v1/auth/providers/:provider
func (h *AuthHandler) ProviderLogin(c *gin.Context) {
	if err := h.services.Auth.Allow(c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	provider := c.Param("provider")
	session, err := h.services.Auth.SignInWithProvider(c.Request.Context(), provider, req.Code, req.RedirectURI)
	if err != nil {
		h.signInFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// signInFailed surfaces the failure message verbatim
func (h *AuthHandler) signInFailed(c *gin.Context, err error) {
	status := http.StatusUnauthorized
	if errors.Is(err, auth.ErrUnknownProvider) {
		status = http.StatusBadRequest
	}
	h.log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("Sign-in failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.services.Auth.SignOut(c.Request.Context(), bearerToken(c)); err != nil {
		h.log.Error().Err(err).Msg("Sign-out failed")
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Session handles GET /v1/session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, currentIdentity(c))
}

// Events handles GET /v1/session/events. It streams the caller's own
// sign-in state changes and every collection invalidation.
func (h *AuthHandler) Events(c *gin.Context) {
	identity := currentIdentity(c)
	ctx := c.Request.Context()

	authEvents, cancelAuth := h.services.Auth.Subscribe()
	defer cancelAuth()

	var invalidations <-chan service.Invalidation
	if h.services.Invalidator != nil {
		ch, cancel := h.services.Invalidator.Subscribe()
		defer cancel()
		invalidations = ch
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// The first event confirms the stream and carries the current session
	c.SSEvent("session", identity)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-authEvents:
			if !ok {
				return false
			}
			if ev.Email == identity.Email {
				c.SSEvent("auth", ev)
			}
			return true
		case inv, ok := <-invalidations:
			if !ok {
				return false
			}
			c.SSEvent("invalidate", inv)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().Format(time.RFC3339)})
			return true
		}
	})
}
