package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-registrar-api/internal/dto"
	"github.com/noah-isme/campus-registrar-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
}

// DashboardHandler exposes the registrar dashboard.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the dashboard handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Registrar dashboard
// @Description Overview counters, weekly activity, distributions, popular courses and books, recent activity. Computed on every request.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary, "")
}
