package api

import (
	"filvault/internal/provider"
	"filvault/internal/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, store storage.Store, client *provider.Client) {
	r.Use(Logger())
	r.Use(Recovery())
	r.Use(RequestID())

	handler := NewHandler(store, client)
	healthHandler := NewHealthHandler(store)
	metricsHandler := NewMetricsHandler(store)

	setupAPIRoutes(r, handler)
	setupHealthRoutes(r, healthHandler, metricsHandler)
}

func setupAPIRoutes(r *gin.Engine, handler *Handler) {
	api := r.Group("/api")
	{
		api.POST("/upload", handler.Upload)
		api.GET("/deal/:cid", handler.DealStatus)
		api.GET("/files/:wallet", handler.ListFiles)
		api.GET("/stats/:wallet", handler.Stats)
		api.POST("/verify/:cid", handler.Verify)
	}
}

func setupHealthRoutes(r *gin.Engine, healthHandler *HealthHandler, metricsHandler *MetricsHandler) {
	health := r.Group("/health")
	{
		health.GET("", healthHandler.Health)
		health.GET("/live", healthHandler.Liveness)
		health.GET("/ready", healthHandler.Readiness)
	}

	r.GET("/metrics", metricsHandler.Metrics)
}
