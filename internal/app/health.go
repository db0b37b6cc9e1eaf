package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

// Handler reports service health. Postgres is load-bearing, so its
// failure is a 503. Redis only degrades enforcement, so its absence or
// failure keeps the service healthy with a degraded marker.
func (h *HealthChecker) Handler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.infra.Postgres().Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"error":  err.Error(),
		})
		return
	}

	stateStore := "pass"
	if h.infra.Redis() == nil {
		stateStore = "absent"
	} else if err := h.infra.Redis().Ping(ctx); err != nil {
		stateStore = "fail"
	}

	status := "pass"
	if stateStore != "pass" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"state_store": stateStore,
	})
}
