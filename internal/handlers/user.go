package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/:username", h.GetUser)
	g.GET("/profile", h.GetProfile, middleware.RequireUser)
	g.PUT("/profile", h.UpdateProfile, middleware.RequireUser)
	g.POST("/profile/bot", h.ToggleBot, middleware.RequireUser)
}

// GetUser returns another user's public profile
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return toHTTPError(err, "User profile not found")
	}
	return success(c, http.StatusOK, user)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return toHTTPError(err, "User profile not found")
	}
	return success(c, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's display name and bio
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, getUserIDFromContext(c))
	if err != nil {
		return toHTTPError(err, "User profile not found")
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return toHTTPError(err, "User profile not found")
	}
	return success(c, http.StatusOK, user)
}

// ToggleBot flips the bot flag of the authenticated user
func (h *UserHandler) ToggleBot(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, getUserIDFromContext(c))
	if err != nil {
		return toHTTPError(err, "User profile not found")
	}

	user.IsBot = !user.IsBot
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return toHTTPError(err, "User profile not found")
	}
	return success(c, http.StatusOK, echo.Map{"is_bot": user.IsBot})
}
