package handler

import (
	"net/http"

	"bloodalert/internal/repository"
	"bloodalert/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dash  *service.DashboardService
	stats repository.Stats
}

func NewDashboardHandler(dash *service.DashboardService, stats repository.Stats) *DashboardHandler {
	return &DashboardHandler{dash: dash, stats: stats}
}

// Summary handles GET /api/admin/summary.
func (h *DashboardHandler) Summary(c *gin.Context) {
	sum, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		fail(c, "load summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sum})
}

// Dashboard handles GET /api/admin/dashboard. A failed fetch still carries the
// zeroed stats so clients render an empty dashboard.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	stats, err := h.dash.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "load dashboard failed", "data": stats})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
