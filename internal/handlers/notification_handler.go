package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/anonto42/microblog/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	feedBuilder *services.FeedBuilder
	watermark   *services.WatermarkTracker
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(feedBuilder *services.FeedBuilder, watermark *services.WatermarkTracker) *NotificationHandler {
	return &NotificationHandler{
		feedBuilder: feedBuilder,
		watermark:   watermark,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications, middleware.RequireUser)
	g.GET("/notifications/unread-count", h.GetUnreadCount, middleware.RequireUser)
	g.POST("/notifications/seen", h.MarkSeen, middleware.RequireUser)
}

// GetNotifications returns the aggregated feed and the unread count
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)

	feed := h.feedBuilder.GetFeed(ctx, currentUserID)
	unreadCount, err := h.unreadCount(c)
	if err != nil {
		return err
	}

	return success(c, http.StatusOK, echo.Map{
		"notifications": feed,
		"unreadCount":   unreadCount,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.unreadCount(c)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

// MarkSeen marks every current notification as read
func (h *NotificationHandler) MarkSeen(c echo.Context) error {
	if err := h.watermark.MarkSeen(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		return toHTTPError(err, "User not found")
	}
	return success(c, http.StatusOK, echo.Map{"success": true})
}

// unreadCount degrades to 0 while storage is busy so polling clients keep working
func (h *NotificationHandler) unreadCount(c echo.Context) (int64, error) {
	currentUserID := getUserIDFromContext(c)
	count, err := h.watermark.UnreadCount(c.Request().Context(), currentUserID)
	if errors.Is(err, repositories.ErrUnavailable) {
		logging.Warn().Err(err).Uint("user_id", currentUserID).Msg("unread count unavailable")
		return 0, nil
	}
	if err != nil {
		return 0, toHTTPError(err, "User not found")
	}
	return count, nil
}
