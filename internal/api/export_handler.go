package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	pageSize int
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		pageSize: cfg.Users.PageSize,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamUsers handles GET /v1/users/export?format=...
// Streams the filtered and sorted users directly to the response
func (h *ExportHandler) StreamUsers(c *gin.Context) {
	format := c.Query("format")
	if format == "" {
		format = service.FormatNDJSON // Default to NDJSON for streaming
	}
	if format != service.FormatNDJSON && format != service.FormatJSON && format != service.FormatCSV {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json, csv"})
		return
	}

	q, err := parseQuery(c, h.pageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.log.Info().
		Str("format", format).
		Str("search", q.Search).
		Str("status", q.Status).
		Str("role", q.Role).
		Msg("Starting streaming export")

	if err := h.services.Export.StreamUsers(c.Request.Context(), c.Writer, format, q); err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		// Can't return error JSON after streaming has started
		if !c.Writer.Written() {
			respondError(c, err)
		}
	}
}
