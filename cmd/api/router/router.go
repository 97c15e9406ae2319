package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"portfolio-site/cmd/api/handlers"
	"portfolio-site/cmd/api/middleware"
	"portfolio-site/config"
	_ "portfolio-site/docs"
)

func New(svc handlers.ContentService, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.GET("/health", handlers.HealthHandler(svc))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/content", handlers.ContentHandler(svc))
	}

	return r
}
