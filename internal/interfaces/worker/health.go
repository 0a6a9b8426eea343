package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/FamilyCare-Analytics/internal/app"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
)

func init() { gin.SetMode(gin.ReleaseMode) }

// NewProbeRouter serves /healthz, /readyz and, when metrics is non-nil,
// /metrics for the worker process.
func NewProbeRouter(checks []app.HealthCheck, appMetrics *prometheus.AppMetrics, metrics http.Handler) *gin.Engine {
	if appMetrics == nil {
		appMetrics = prometheus.NewNoopAppMetrics()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for _, check := range checks {
			err := check.Check(ctx)
			prometheus.RecordHealth(appMetrics, check.Name, err == nil)
			if err != nil {
				status = http.StatusServiceUnavailable
				components[check.Name] = err.Error()
				continue
			}
			components[check.Name] = "ok"
		}
		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "components": components})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	return r
}
