package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keyvault/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// HealthCheck is one named dependency check
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler reports whether the service and its dependencies respond
type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Pings the database and Redis; 503 when any dependency fails
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "healthy", "time": time.Now().Format(time.RFC3339)}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.L(ctx).Warn("Health check failed", zap.String("dependency", check.Name), zap.Error(err))
			body[check.Name] = "error"
			body["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		body[check.Name] = "ok"
	}
	c.JSON(status, body)
}
