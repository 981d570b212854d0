package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, uint32(5), cfg.Notifications.BreakerFailures)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "database:\n  path: from-file.db\n  query_timeout: 2s\nserver:\n  port: \"9000\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("DATABASE_PATH", "from-env.db")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "9100", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate(), "postgres without dsn")

	cfg.Database.DSN = "postgres://localhost/microblog"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "database.query_timeout", envTransformFunc("DATABASE_QUERY_TIMEOUT"))
	assert.Equal(t, "auth.jwt_secret", envTransformFunc("JWT_SECRET"))
	assert.Equal(t, "", envTransformFunc("HOME"))
}

func TestInitDB_SQLiteUsesWAL(t *testing.T) {
	cfg := defaultConfig().Database
	cfg.Path = filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(db.CloseDB)
	require.NoError(t, db.Migrate())

	var mode string
	require.NoError(t, db.Gorm.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
}
