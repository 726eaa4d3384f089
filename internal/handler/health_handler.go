package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"labparse/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	reportService service.ReportService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(reportService service.ReportService) *HealthHandler {
	return &HealthHandler{reportService: reportService}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready once the catalog is
// loaded; AI availability is reported but does not affect readiness.
func (h *HealthHandler) Readiness(c *gin.Context) {
	cat := h.reportService.Catalog()
	if cat == nil || len(cat.Patterns()) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "indicator catalog not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ai_enabled": h.reportService.AIEnabled()})
}
