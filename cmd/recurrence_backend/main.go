package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/core/services"
	"github.com/SscSPs/money_recurrence/internal/events"
	"github.com/SscSPs/money_recurrence/internal/handlers"
	"github.com/SscSPs/money_recurrence/internal/middleware"
	"github.com/SscSPs/money_recurrence/internal/platform/config"
	"github.com/SscSPs/money_recurrence/internal/repositories/database/migrations"
	"github.com/SscSPs/money_recurrence/internal/repositories/database/pgsql"
	"github.com/SscSPs/money_recurrence/internal/repositories/database/sqlite"
	"github.com/SscSPs/money_recurrence/internal/repositories/memory"
	"github.com/SscSPs/money_recurrence/internal/utils"
	"github.com/SscSPs/money_recurrence/internal/worker"
	"github.com/SscSPs/money_recurrence/pkg/database"
	"github.com/gin-gonic/gin"
)

// @title Recurrence Engine API
// @version 1.0
// @description Schedules, materializes and projects recurring transactions.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("backend", cfg.DataBackend), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	publisher := newPublisher(cfg, logger)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Error("Error closing event publisher", slog.String("error", cerr.Error()))
		}
	}()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	container := services.NewServiceContainer(cfg, repos, publisher)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = handlers.RegisterRoutes(r, cfg, handlers.Dependencies{
		Services: container,
		Health:   repos.Health,
		Posthog:  posthogClient,
	})
	if err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.SchedulerEnabled {
		scheduler := worker.NewScheduler(repos.RecurrenceRepo, container.Materialization, cfg.SchedulerInterval, logger)
		go scheduler.Run(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("backend", cfg.DataBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// openRepositories connects the configured backend and applies its migrations.
// The returned func releases the connection.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Database connection pool established.")

		migrationDB, err := database.OpenMigrationDB(ctx, cfg.DatabaseURL)
		if err != nil {
			database.ClosePgxPool(dbPool)
			return portsrepo.RepositoryProvider{}, nil, err
		}
		err = migrations.RunPostgres(migrationDB, logger)
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
		if err != nil {
			database.ClosePgxPool(dbPool)
			return portsrepo.RepositoryProvider{}, nil, err
		}
		return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLiteDBPath, logger)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite database opened", slog.String("path", cfg.SQLiteDBPath))
		closeDB := func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("Error closing SQLite database", slog.String("error", cerr.Error()))
			}
		}
		return sqlite.NewRepositoryProvider(db), closeDB, nil

	case config.BackendMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}
	return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
}

// newPublisher connects to the broker when one is configured. A broker that
// cannot be reached at startup degrades to logging the events.
func newPublisher(cfg *config.Config, logger *slog.Logger) portssvc.EventPublisher {
	if cfg.AMQPURL == "" {
		return events.NewLogPublisher(logger)
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker, falling back to log publisher", slog.String("error", err.Error()))
		return events.NewLogPublisher(logger)
	}
	logger.Info("Publishing materialization events", slog.String("exchange", cfg.AMQPExchange))
	return publisher
}
