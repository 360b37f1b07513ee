package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/service"
	"github.com/admin-console-api/internal/userview"
)

// UserHandler handles the users page endpoints
type UserHandler struct {
	services *service.Services
	pageSize int
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		pageSize: cfg.Users.PageSize,
		log:      log.With().Str("handler", "users").Logger(),
	}
}

// parseQuery reads search, status, role, sort, direction and page from the
// query string. Filters are applied through the setters, so page resets to 1
// unless it is given explicitly.
func parseQuery(c *gin.Context, pageSize int) (userview.Query, error) {
	q := userview.NewQuery(pageSize).
		SetSearch(c.Query("search")).
		SetStatus(c.DefaultQuery("status", models.FilterAll)).
		SetRole(c.DefaultQuery("role", models.FilterAll))

	if q.Status != models.FilterAll && !models.ValidStatuses[q.Status] {
		return q, fmt.Errorf("%w: %q", service.ErrInvalidStatus, q.Status)
	}
	if q.Role != models.FilterAll && !models.ValidRoles[q.Role] {
		return q, fmt.Errorf("%w: %q", service.ErrInvalidRole, q.Role)
	}

	dir, err := userview.ParseDirection(c.Query("direction"))
	if err != nil {
		return q, err
	}
	q.Sort = userview.SortConfig{Key: c.Query("sort"), Direction: dir}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return q, fmt.Errorf("invalid page %q", raw)
		}
		q.Page = int(page)
	}
	return q, nil
}

// refreshRequested reads the refresh flag
func refreshRequested(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("refresh"))
	return v
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	q, err := parseQuery(c, h.pageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.services.Users.Query(c.Request.Context(), q, refreshRequested(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserPage(q, res))
}

type inviteRequest struct {
	Email string `json:"email"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// Invite handles POST /v1/users/invite
func (h *UserHandler) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.mutate(c, func(actor string) (*service.MutationResult, error) {
		return h.services.Users.Invite(c.Request.Context(), actor, req.Email)
	}, http.StatusCreated)
}

// SetStatus handles PATCH /v1/users/:id/status
func (h *UserHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id := c.Param("id")
	h.mutate(c, func(actor string) (*service.MutationResult, error) {
		return h.services.Users.SetStatus(c.Request.Context(), actor, id, req.Status)
	}, http.StatusOK)
}

// SetRole handles PATCH /v1/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id := c.Param("id")
	h.mutate(c, func(actor string) (*service.MutationResult, error) {
		return h.services.Users.SetRole(c.Request.Context(), actor, id, req.Role)
	}, http.StatusOK)
}

// mutate runs a write and answers with the message, the written user and the
// page of the reloaded collection for the selection in the query string.
func (h *UserHandler) mutate(c *gin.Context, write func(actor string) (*service.MutationResult, error), okStatus int) {
	q, err := parseQuery(c, h.pageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := ""
	if id := currentIdentity(c); id != nil {
		actor = id.Email
	}

	res, err := write(actor)
	if err != nil {
		h.log.Warn().Err(err).Str("actor", actor).Msg("User mutation rejected")
		respondError(c, err)
		return
	}

	page, err := q.Run(res.Users)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(okStatus, gin.H{
		"message": res.Message,
		"user":    newUserCard(res.User),
		"page":    newUserPage(q, page),
	})
}
