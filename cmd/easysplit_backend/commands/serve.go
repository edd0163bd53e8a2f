package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/easysplit_backend/internal/core/services"
	"github.com/SscSPs/easysplit_backend/internal/handlers"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/SscSPs/easysplit_backend/internal/platform/metrics"
	"github.com/SscSPs/easysplit_backend/internal/platform/ratelimit"
	"github.com/SscSPs/easysplit_backend/internal/platform/telemetry"
	"github.com/SscSPs/easysplit_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/easysplit_backend/internal/utils"
	"github.com/SscSPs/easysplit_backend/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func runServe(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:       cfg.OTELServiceName,
		CollectorEndpoint: cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			logger.Error("Failed to shut down telemetry", slog.String("error", err.Error()))
		}
	}()

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	defer database.ClosePgxPool(dbPool, logger)
	logger.Info("Database connection pool established.")

	if cfg.MigrateOnStart {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, database.MigrateUp, logger); err != nil {
			return err
		}
	}

	m := metrics.New()
	serviceContainer := services.NewServiceContainer(pgsql.NewRepositoryProvider(dbPool), m)

	lim, closeLimiter, err := ratelimit.New(ctx, cfg.RateLimit, cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer func() {
		if err := closeLimiter(); err != nil {
			logger.Error("Failed to close rate limiter store", slog.String("error", err.Error()))
		}
	}()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.RouterOptions{
		Metrics: m,
		Limiter: lim,
		Posthog: posthogClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Gracefully shutting down server...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
