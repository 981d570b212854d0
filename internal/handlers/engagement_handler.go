package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/services"
)

// EngagementHandler handles likes, replies and reshares
type EngagementHandler struct {
	engagementService *services.EngagementService
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagementService *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

// RegisterEngagementRoutes registers engagement routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.GET("/engagements", h.ListEngagements)
	g.POST("/engagements", h.CreateEngagement, middleware.RequireUser)
	g.DELETE("/engagements/:id", h.DeleteEngagement, middleware.RequireUser)
}

// CreateEngagement likes, replies to or reshares a post
func (h *EngagementHandler) CreateEngagement(c echo.Context) error {
	var req models.CreateEngagementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	engagement, err := h.engagementService.Create(
		c.Request().Context(),
		getUserIDFromContext(c),
		req.PostID,
		models.EngagementKind(req.Kind),
		req.Content,
	)
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return success(c, http.StatusCreated, engagement)
}

// DeleteEngagement removes one of the current user's engagements
func (h *EngagementHandler) DeleteEngagement(c echo.Context) error {
	engagementID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.engagementService.Delete(c.Request().Context(), getUserIDFromContext(c), engagementID); err != nil {
		return toHTTPError(err, "Engagement not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListEngagements returns the raw engagements on a post
func (h *EngagementHandler) ListEngagements(c echo.Context) error {
	postID, err := strconv.ParseUint(c.QueryParam("post_id"), 10, 32)
	if err != nil || postID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post_id")
	}

	engagements, err := h.engagementService.ListForPost(c.Request().Context(), uint(postID))
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return success(c, http.StatusOK, echo.Map{"engagements": engagements})
}
