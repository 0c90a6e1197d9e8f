package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/import", handler.ImportSync)
		v1.POST("/import/async", handler.ImportAsync)
		v1.GET("/import/:id", handler.GetImport)
	}
}

// NewRouter builds the engine with the standard middleware chain.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(MetricsMiddleware())

	SetupRoutes(router, handler)
	return router
}
