package api

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"filvault/internal/storage"

	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	store     storage.Store
	startTime time.Time
}

func NewMetricsHandler(store storage.Store) *MetricsHandler {
	return &MetricsHandler{
		store:     store,
		startTime: time.Now(),
	}
}

// Metrics serves Prometheus text-format gauges for the record store and the
// process.
func (h *MetricsHandler) Metrics(c *gin.Context) {
	counts, err := h.store.Counts()
	if err != nil {
		c.String(http.StatusServiceUnavailable, "# store unavailable\n")
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime).Seconds()

	metrics := []string{
		"# HELP filvault_up Service is up",
		"# TYPE filvault_up gauge",
		"filvault_up 1",
		"",
		"# HELP filvault_uptime_seconds Service uptime in seconds",
		"# TYPE filvault_uptime_seconds counter",
		formatMetric("filvault_uptime_seconds", uptime),
		"",
		"# HELP filvault_files_total Total number of file records",
		"# TYPE filvault_files_total gauge",
		formatMetric("filvault_files_total", counts.Files),
		"",
		"# HELP filvault_deals_total Total number of deal records",
		"# TYPE filvault_deals_total gauge",
		formatMetric("filvault_deals_total", counts.Deals),
		"",
		"# HELP filvault_storage_bytes Tracked storage size in bytes",
		"# TYPE filvault_storage_bytes gauge",
		formatMetric("filvault_storage_bytes", counts.StorageBytes),
		"",
		"# HELP filvault_memory_alloc_bytes Allocated memory in bytes",
		"# TYPE filvault_memory_alloc_bytes gauge",
		formatMetric("filvault_memory_alloc_bytes", m.Alloc),
		"",
		"# HELP filvault_goroutines Number of goroutines",
		"# TYPE filvault_goroutines gauge",
		formatMetric("filvault_goroutines", runtime.NumGoroutine()),
		"",
	}

	c.String(http.StatusOK, strings.Join(metrics, "\n")+"\n")
}

func formatMetric(name string, value interface{}) string {
	switch v := value.(type) {
	case float64:
		return fmt.Sprintf("%s %.6f", name, v)
	default:
		return fmt.Sprintf("%s %d", name, v)
	}
}
