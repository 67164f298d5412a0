package http

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/storehelper/backend/config"
	"github.com/storehelper/backend/internal/metrics"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", metrics.Handler())

	// Catalog page and the images it links to
	router.GET("/", handler.ServeCatalog)
	if cfg.Images.CacheDir != "" {
		router.Static("/cache/images", cfg.Images.CacheDir)
	}
	if cfg.Images.PlaceholderPath != "" {
		router.Static("/images", filepath.Dir(cfg.Images.PlaceholderPath))
	}

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		api.GET("/search", handler.SearchProducts)
	}

	return router
}
