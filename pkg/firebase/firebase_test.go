package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFirebase_DisabledWithoutCredentials(t *testing.T) {
	app, err := InitFirebase(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, app)
}

func TestInitFirebase_MissingFile(t *testing.T) {
	_, err := InitFirebase(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
