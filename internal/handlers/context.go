package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/anonto42/microblog/backend/internal/services"
)

// getUserIDFromContext returns the authenticated user's id, 0 when anonymous
func getUserIDFromContext(c echo.Context) uint {
	id, _ := c.Get(middleware.ContextKeyUserID).(uint)
	return id
}

// viewerFromContext returns the authenticated user's id, nil when anonymous
func viewerFromContext(c echo.Context) *uint {
	if id := getUserIDFromContext(c); id != 0 {
		return &id
	}
	return nil
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// bindAndValidate binds the request body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// toHTTPError maps pipeline errors onto HTTP status codes
func toHTTPError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repositories.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Already exists")
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed")
	case errors.Is(err, services.ErrInvalidKind):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage busy, try again")
	default:
		logging.Error().Err(err).Msg("unexpected handler error")
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
