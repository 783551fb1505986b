package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
)

// DashboardHandler handles the staff dashboard overview.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats godoc
// GET /api/v1/dashboard/stats
// Returns platform-wide counters for the dashboard landing page.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
