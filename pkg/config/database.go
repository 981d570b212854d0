package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection pool
type DB struct {
	Gorm *gorm.DB
}

// InitDB opens the configured database and applies connection settings.
// SQLite runs in WAL mode so readers are not blocked by the single writer.
func InitDB(cfg DatabaseConfig) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." && cfg.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(sqliteDSN(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	logging.Info().Str("driver", cfg.Driver).Msg("database connected")
	return &DB{Gorm: db}, nil
}

// sqliteDSN builds a go-sqlite3 DSN. Pragmas passed through the DSN are applied
// to every pooled connection, not just the first one.
func sqliteDSN(cfg DatabaseConfig) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d&_foreign_keys=on&cache=private",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
}

// Migrate creates or updates every table
func (db *DB) Migrate() error {
	err := db.Gorm.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Engagement{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	logging.Info().Msg("database migrations completed")
	return nil
}

// CloseDB closes the connection pool
func (db *DB) CloseDB() {
	if db.Gorm == nil {
		return
	}
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		logging.Error().Err(err).Msg("failed to get sql.DB from gorm")
		return
	}
	if err := sqlDB.Close(); err != nil {
		logging.Error().Err(err).Msg("failed to close database")
		return
	}
	logging.Info().Msg("database connection closed")
}
