package router

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/anonto42/microblog/backend/internal/events"
	"github.com/anonto42/microblog/backend/internal/handlers"
	"github.com/anonto42/microblog/backend/internal/logging"
	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/anonto42/microblog/backend/internal/services"
	"github.com/anonto42/microblog/backend/internal/validators"
	"github.com/anonto42/microblog/backend/pkg/config"
)

// Dependencies are the process-wide resources the routes are built from
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
	Bus    *events.Bus

	// FirebaseAuth is nil when Firebase login is disabled
	FirebaseAuth middleware.TokenVerifier
}

// SetupRoutes configures all application routes and injects dependencies.
// The notifier stays subscribed to the bus until ctx is cancelled.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies) error {
	e.Validator = validators.New()

	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cfg := deps.Config
	timeout := cfg.Database.QueryTimeout

	// --- Repositories ---
	userRepo := repositories.NewGormUserRepository(deps.DB)
	postRepo := repositories.NewGormPostRepository(deps.DB)
	engagementRepo := repositories.NewGormEngagementRepository(deps.DB)
	notificationRepo := repositories.NewGormNotificationRepository(deps.DB)

	// --- Pipeline ---
	aggregator := services.NewEngagementAggregator(engagementRepo, timeout)
	notifier := services.NewNotifier(postRepo, notificationRepo, services.NotifierConfig{
		QueryTimeout:     timeout,
		FailureThreshold: cfg.Notifications.BreakerFailures,
		OpenTimeout:      cfg.Notifications.BreakerTimeout,
	})
	if err := deps.Bus.SubscribeEngagementCreated(ctx, notifier.HandleEngagementCreated); err != nil {
		return fmt.Errorf("failed to subscribe notifier: %w", err)
	}
	feedBuilder := services.NewFeedBuilder(notificationRepo, engagementRepo, timeout)
	watermark := services.NewWatermarkTracker(notificationRepo, timeout)
	engagementService := services.NewEngagementService(postRepo, engagementRepo, deps.Bus, timeout)
	postService := services.NewPostService(postRepo, userRepo, engagementRepo, aggregator, timeout)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler.RegisterAuthRoutes(authGroup, deps.FirebaseAuth)

	// --- API routes; handlers require a user where they need one ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.Auth.JWTSecret))

	handlers.NewUserHandler(userRepo).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postService, aggregator).RegisterPostRoutes(api)
	handlers.NewEngagementHandler(engagementService).RegisterEngagementRoutes(api)
	handlers.NewNotificationHandler(feedBuilder, watermark).RegisterNotificationRoutes(api)

	logging.Info().Bool("firebase_login", deps.FirebaseAuth != nil).Msg("routes configured")
	return nil
}
