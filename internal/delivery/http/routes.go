package http

import (
	"github.com/gin-gonic/gin"

	"github.com/specmatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	v1.Use(RequestSizeLimitMiddleware(maxRequestBody))
	{
		v1.POST("/requirements/extract", handler.ExtractRequirements)

		products := v1.Group("/products")
		{
			products.POST("/analyze", handler.AnalyzeProduct)
			products.POST("/score", handler.ScoreProduct)
		}

		v1.POST("/recommendations", handler.Recommend)
	}

	return router
}
