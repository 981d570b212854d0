package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/anonto42/microblog/backend/internal/events"
	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/router"
	"github.com/anonto42/microblog/backend/pkg/config"
	"github.com/anonto42/microblog/backend/pkg/firebase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "microblog",
		Short:         "Micro-blog API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configPath != "" {
				_ = os.Setenv(config.ConfigPathEnvVar, configPath)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.CloseDB()
			return db.Migrate()
		},
	})
	return root
}

// bootstrap loads configuration, configures logging and opens the database
func bootstrap() (*config.Config, *config.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, db, nil
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := db.Migrate(); err != nil {
		return err
	}

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.Auth.FirebaseCredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to initialize firebase: %w", err)
	}
	var verifier middleware.TokenVerifier
	if firebaseApp != nil {
		verifier = firebaseApp.AuthClient
	}

	bus := events.NewBus(logging.NewWatermillAdapter())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close event bus")
		}
	}()

	// Subscribers outlive the signal so requests finishing during the drain
	// still produce notifications.
	subCtx, stopSubscribers := context.WithCancel(context.Background())
	defer stopSubscribers()

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e)
	if err := router.SetupRoutes(subCtx, e, router.Dependencies{
		DB:           db.Gorm,
		Config:       cfg,
		Bus:          bus,
		FirebaseAuth: verifier,
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down server")
	return drain(e, stopSubscribers)
}

// drain waits for in-flight requests and only then stops the subscribers.
func drain(e *echo.Echo, stopSubscribers context.CancelFunc) error {
	defer stopSubscribers()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(ctx)
}
