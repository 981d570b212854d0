package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
	aggregator  *services.EngagementAggregator
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService, aggregator *services.EngagementAggregator) *PostHandler {
	return &PostHandler{
		postService: postService,
		aggregator:  aggregator,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetTimeline)
	g.POST("/posts", h.CreatePost, middleware.RequireUser)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts/:id/counts", h.GetCounts)
	g.GET("/users/:username/posts", h.GetUserPosts)
}

// CreatePost publishes a new post for the current user
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.postService.CreatePost(c.Request().Context(), getUserIDFromContext(c), req.Text)
	if err != nil {
		return toHTTPError(err, "User not found")
	}
	return success(c, http.StatusCreated, view)
}

// GetTimeline returns the most recent posts with counts and viewer flags
func (h *PostHandler) GetTimeline(c echo.Context) error {
	posts, err := h.postService.Timeline(c.Request().Context(), viewerFromContext(c))
	if err != nil {
		return toHTTPError(err, "Posts not found")
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

// GetPost returns a post with its counts and replies
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	post, replies, err := h.postService.PostDetail(c.Request().Context(), postID, viewerFromContext(c))
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return success(c, http.StatusOK, echo.Map{"post": post, "replies": replies})
}

// GetCounts returns engagement counts for a post. Unknown posts report zeros.
func (h *PostHandler) GetCounts(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	counts, err := h.aggregator.GetCounts(c.Request().Context(), postID, viewerFromContext(c))
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return success(c, http.StatusOK, counts)
}

// GetUserPosts returns a user's profile and posts
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	user, posts, err := h.postService.UserPosts(c.Request().Context(), c.Param("username"), viewerFromContext(c))
	if err != nil {
		return toHTTPError(err, "User not found")
	}
	return success(c, http.StatusOK, echo.Map{"user": user, "posts": posts})
}
