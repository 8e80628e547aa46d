package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/money_recurrence/cmd/docs"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/middleware"
	"github.com/SscSPs/money_recurrence/internal/platform/config"
	"github.com/SscSPs/money_recurrence/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies bundles what the routes need besides configuration.
type Dependencies struct {
	Services *portssvc.ServiceContainer
	Health   portsrepo.Pinger
	Posthog  *utils.PosthogClientWrapper
	Now      func() time.Time // Defaults to time.Now
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Dependencies) error {
	if err := RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", healthCheck(deps.Health))

	if err := setupAPIV1Routes(r, cfg, deps); err != nil {
		return err
	}

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, deps Dependencies) error {
	v1 := r.Group("/api/v1", middleware.OwnerContext(), middleware.PosthogMiddleware(deps.Posthog))

	projectionLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	registerMaterializeRoutes(v1, deps.Services.Materialization)
	registerProjectionRoutes(v1, deps.Services.Projection, middleware.RateLimit(projectionLimiter))
	registerRecurrenceRoutes(v1, deps.Services.Recurrence, deps.Now)
	return nil
}

// healthCheck answers 200 while storage is reachable.
func healthCheck(p portsrepo.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			if err := p.Ping(c.Request.Context()); err != nil {
				middleware.GetLoggerFromContext(c).Error("Health check failed", slog.String("error", err.Error()))
				c.String(http.StatusServiceUnavailable, "storage unavailable")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
