package v1

import (
	"github.com/gin-gonic/gin"

	httpHandler "github.com/Akhielesh/secure-chat/internal/pkg/chat/presentation/http"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes mounts health checks at the root and all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, d httpHandler.Dependencies, health *controller.HealthController) {
	r.GET("/healthz", health.Live())
	r.GET("/health/db", health.Deps())

	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, d)
}
