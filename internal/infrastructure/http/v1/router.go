// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postboard/internal/domain/auth"
	"postboard/internal/domain/media"
	"postboard/internal/domain/post"
	"postboard/internal/infrastructure/http/v1/handlers"
	"postboard/internal/infrastructure/http/v1/middleware"
	"postboard/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	// Tokens validates bearer tokens on protected routes.
	Tokens middleware.TokenValidator

	AuthService  *auth.Service
	PostService  *post.Service
	MediaService *media.Service

	// HealthChecks run on /health/ready.
	HealthChecks map[string]handlers.Check

	// Registry receives HTTP metrics and is exposed on /metrics. Nil disables both.
	Registry *prometheus.Registry

	// AuthLimiter throttles /auth per client IP. Nil disables limiting.
	AuthLimiter *middleware.RateLimiter
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Registry != nil {
		router.Use(middleware.NewHTTPMetrics(cfg.Registry).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	guard := middleware.AccessTokenGuard(cfg.Tokens)

	registerAuthRoutes(router, base, guard, cfg)

	postHandler := handlers.NewPostHandler(base, cfg.PostService, cfg.AuthService)
	postHandler.RegisterRoutes(router.Group("/posts"), router.Group("/posts", guard))

	commonHandler := handlers.NewCommonHandler(base, cfg.MediaService)
	router.POST("/common/image", guard, commonHandler.UploadImage)
	router.GET(media.PublicPrefix+"/:area/:name", commonHandler.ServeFile)

	return router
}

func registerAuthRoutes(router *gin.Engine, base *handlers.BaseHandler, guard gin.HandlerFunc, cfg RouterConfig) {
	group := router.Group("/auth")
	if cfg.AuthLimiter != nil {
		group.Use(middleware.RateLimit(cfg.AuthLimiter))
	}

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	authHandler.RegisterRoutes(group, group.Group("", guard))
}
