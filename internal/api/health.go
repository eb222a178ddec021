package api

import (
	"net/http"
	"time"

	"filvault/internal/storage"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store     storage.Store
	startTime time.Time
}

func NewHealthHandler(store storage.Store) *HealthHandler {
	return &HealthHandler{
		store:     store,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	counts, err := h.store.Counts()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"records": gin.H{
			"files": counts.Files,
			"deals": counts.Deals,
		},
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	counts, err := h.store.Counts()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(h.startTime).Seconds(),
		"records": gin.H{
			"files":         counts.Files,
			"deals":         counts.Deals,
			"storage_bytes": counts.StorageBytes,
		},
	})
}
