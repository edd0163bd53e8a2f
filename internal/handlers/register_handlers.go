package handlers

import (
	"net/http"

	"github.com/SscSPs/easysplit_backend/cmd/docs"
	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/SscSPs/easysplit_backend/internal/platform/config"
	"github.com/SscSPs/easysplit_backend/internal/platform/metrics"
	"github.com/SscSPs/easysplit_backend/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouterOptions carries the optional cross-cutting collaborators of the router.
// Nil fields disable the matching middleware.
type RouterOptions struct {
	Metrics *metrics.Metrics
	Limiter *limiter.Limiter
	Posthog *utils.PosthogClientWrapper
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouterOptions,
) {
	RegisterValidators()

	// cors.New panics on an empty origin list
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		r.Use(cors.New(corsCfg))
	}

	if opts.Metrics != nil {
		r.Use(middleware.HTTPMetrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, opts)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	opts RouterOptions,
) {
	var chain []gin.HandlerFunc
	if opts.Limiter != nil {
		chain = append(chain, middleware.RateLimit(opts.Limiter))
	}
	chain = append(chain, middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	if opts.Posthog != nil {
		chain = append(chain, middleware.PosthogMiddleware(opts.Posthog))
	}
	v1 := r.Group("/api/v1", chain...)

	RegisterGroupRoutes(v1, service.Group)
	RegisterMemberRoutes(v1, service.Member)
	RegisterRecordRoutes(v1, service.Record)
	RegisterBalanceRoutes(v1, service.Balance)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
