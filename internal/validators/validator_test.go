package validators

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/microblog/backend/internal/models"
)

func TestValidate_Engagement(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&models.CreateEngagementRequest{PostID: 1, Kind: "like"}))
	assert.NoError(t, v.Validate(&models.CreateEngagementRequest{PostID: 1, Kind: "reply", Content: "hi"}))

	err := v.Validate(&models.CreateEngagementRequest{PostID: 1, Kind: "reply"})
	require.Error(t, err)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)

	assert.Error(t, v.Validate(&models.CreateEngagementRequest{PostID: 1, Kind: "boost"}))
	assert.Error(t, v.Validate(&models.CreateEngagementRequest{Kind: "like"}))
}

func TestValidate_PostLength(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&models.CreatePostRequest{Text: strings.Repeat("a", models.MaxPostLength)}))
	assert.Error(t, v.Validate(&models.CreatePostRequest{Text: strings.Repeat("a", models.MaxPostLength+1)}))
	assert.Error(t, v.Validate(&models.CreatePostRequest{Text: ""}))
}

func TestValidate_Signup(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&models.SignupRequest{Username: "alice", Password: "password1"}))
	assert.Error(t, v.Validate(&models.SignupRequest{Username: "a", Password: "password1"}))
	assert.Error(t, v.Validate(&models.SignupRequest{Username: "al ice", Password: "password1"}))
	assert.Error(t, v.Validate(&models.SignupRequest{Username: "alice", Password: "short"}))
}
