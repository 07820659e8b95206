package http

import (
	"github.com/gin-gonic/gin"
	"github.com/pricelens/backend/config"
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

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		catalog := v1.Group("/catalog")
		{
			catalog.GET("", handler.CatalogStatus)
			catalog.GET("/categories", handler.ListCategories)
			catalog.GET("/titles", handler.ListTitles)
			catalog.POST("/reload", handler.ReloadCatalog)
		}

		v1.POST("/sessions", handler.StartSession)
		session := v1.Group("/sessions/:id")
		{
			session.DELETE("", handler.EndSession)
			session.GET("/products", handler.BrowseProducts)

			session.GET("/cart", handler.GetCart)
			session.POST("/cart", handler.AddToCart)
			session.DELETE("/cart", handler.ClearCart)
			session.PUT("/cart/purchased", handler.MarkPurchased)
			session.DELETE("/cart/purchased", handler.RemovePurchased)
			session.POST("/cart/purchased/reset", handler.ResetPurchased)
			session.GET("/cart/export", handler.ExportCart)
		}
	}

	return router
}
