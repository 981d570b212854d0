package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/microblog/backend/internal/models"
)

const (
	// ContextKeyClaims holds the *models.JwtCustomClaims of an authenticated request
	ContextKeyClaims = "user"
	// ContextKeyUserID holds the authenticated user's id as uint
	ContextKeyUserID = "userID"
)

var errNoBearer = errors.New("authorization header must be in Bearer format")

// bearerToken extracts the token from "Authorization: Bearer <token>".
// It returns "" and no error when the header is absent.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errNoBearer
	}
	return parts[1], nil
}

// JWTAuthMiddleware parses a bearer JWT when one is sent and stores the claims
// and user id in the context. Requests without a token pass through as
// anonymous; a malformed or invalid token is rejected.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			if tokenString == "" {
				return next(c)
			}

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.UserID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyUserID, claims.UserID)
			return next(c)
		}
	}
}

// RequireUser rejects requests that JWTAuthMiddleware left anonymous
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id, ok := c.Get(ContextKeyUserID).(uint); !ok || id == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		return next(c)
	}
}
