package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports the last known store connectivity.
type HealthChecker interface {
	Healthy() bool
}

type HealthHandler struct {
	store HealthChecker
}

func NewHealthHandler(store HealthChecker) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if !h.store.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "up"})
}
