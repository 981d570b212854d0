package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/microblog/backend/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID uint, ttl time.Duration) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:   userID,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runJWT(t *testing.T, header string, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, JWTAuthMiddleware(testSecret)(handler)(c)
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("anonymous passes through", func(t *testing.T) {
		_, err := runJWT(t, "", func(c echo.Context) error {
			assert.Nil(t, c.Get(ContextKeyUserID))
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("valid token sets user id", func(t *testing.T) {
		token := signToken(t, testSecret, 42, time.Hour)
		_, err := runJWT(t, "Bearer "+token, func(c echo.Context) error {
			assert.Equal(t, uint(42), c.Get(ContextKeyUserID))
			return nil
		})
		require.NoError(t, err)
	})

	for name, header := range map[string]string{
		"wrong secret": "Bearer " + signToken(t, "other", 42, time.Hour),
		"expired":      "Bearer " + signToken(t, testSecret, 42, -time.Hour),
		"bad format":   "Token abc",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := runJWT(t, header, func(echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

func TestRequireUser(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequireUser(func(echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	c.Set(ContextKeyUserID, uint(7))
	assert.NoError(t, RequireUser(func(echo.Context) error { return nil })(c))
}

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "firebase-uid"}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	e := echo.New()
	mw := FirebaseAuthMiddleware(stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c := e.NewContext(req, httptest.NewRecorder())
	err := mw(func(c echo.Context) error {
		token := c.Get(ContextKeyFirebaseToken).(*auth.Token)
		assert.Equal(t, "firebase-uid", token.UID)
		return nil
	})(c)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	c = e.NewContext(req, httptest.NewRecorder())
	err = mw(func(echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
