package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/service"
	"github.com/admin-console-api/internal/shell"
)

// PreferenceHandler handles the persisted theme and shell transitions
type PreferenceHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(services *service.Services, log zerolog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		services: services,
		log:      log.With().Str("handler", "preferences").Logger(),
	}
}

// Get handles GET /v1/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	email := currentIdentity(c).Email
	theme, err := h.services.Preferences.Theme(c.Request.Context(), email)
	if err != nil {
		// Reading preferences never blocks the console
		h.log.Warn().Err(err).Str("email", email).Msg("Falling back to default theme")
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// SetTheme handles PUT /v1/preferences/theme
func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme is required"})
		return
	}
	if err := h.services.Preferences.SetTheme(c.Request.Context(), currentIdentity(c).Email, req.Theme); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

type transitionRequest struct {
	// State is the current shell state; when absent the first-load state for
	// Width and the saved theme is used.
	State  *shell.ViewState `json:"state"`
	Width  int              `json:"width"`
	Action shell.Action     `json:"action"`
}

type transitionResponse struct {
	State       shell.ViewState `json:"state"`
	Title       string          `json:"title"`
	SidebarMode string          `json:"sidebarMode"`
	ShowOverlay bool            `json:"showOverlay"`
}

// Transition handles POST /v1/shell/transitions
func (h *PreferenceHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action with a type is required"})
		return
	}

	ctx := c.Request.Context()
	email := currentIdentity(c).Email

	var state shell.ViewState
	if req.State != nil {
		state = *req.State
	} else {
		theme, _ := h.services.Preferences.Theme(ctx, email)
		state = shell.NewViewState(req.Width, theme)
	}

	next, err := h.services.Preferences.Transition(ctx, email, state, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transitionResponse{
		State:       next,
		Title:       next.Title(),
		SidebarMode: next.SidebarMode(),
		ShowOverlay: next.ShowOverlay(),
	})
}
