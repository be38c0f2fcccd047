package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and dependency checks.
type HealthController struct {
	DB      Pinger
	Cache   Pinger
	Timeout time.Duration
}

func NewHealthController(db, cache Pinger, timeout time.Duration) *HealthController {
	return &HealthController{DB: db, Cache: cache, Timeout: timeout}
}

// Live always answers ok while the process is serving.
func (h *HealthController) Live() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Deps checks the durable and ephemeral stores.
func (h *HealthController) Deps() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "db": "ok", "cache": "ok"}
		for name, p := range map[string]Pinger{"db": h.DB, "cache": h.Cache} {
			if p == nil {
				body[name] = "disabled"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				body[name] = "down"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, body)
	}
}
