package api

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/service"
)

// ContentHandler handles the dashboard, content library and activity log
type ContentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(services *service.Services, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		services: services,
		log:      log.With().Str("handler", "content").Logger(),
	}
}

// Dashboard handles GET /v1/dashboard
func (h *ContentHandler) Dashboard(c *gin.Context) {
	summary, err := h.services.Dashboard.Summary(c.Request.Context(), refreshRequested(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Posts handles GET /v1/posts?platform=...&status=...
func (h *ContentHandler) Posts(c *gin.Context) {
	var filter models.PostFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if filter.Platform != "" && filter.Platform != models.FilterAll && !slices.Contains(models.Platforms, filter.Platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform must be one of: linkedin, twitter, newsletter, blog, transcript"})
		return
	}

	posts, err := h.services.Posts.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	cards := make([]postCard, len(posts))
	for i, p := range posts {
		cards[i] = newPostCard(p)
	}
	c.JSON(http.StatusOK, gin.H{
		"posts": cards,
		"count": len(cards),
	})
}

// Logs handles GET /v1/logs?limit=...
func (h *ContentHandler) Logs(c *gin.Context) {
	limit := models.MaxLogEntries
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.services.Logs.Latest(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*models.LogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"count": len(entries),
	})
}
