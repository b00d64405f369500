package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/service"
	"dispetcher/backend/pkg/response"
)

// StatsHandler dashboards and the payroll report
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// System headline counters
// GET /api/v1/stats/system
func (h *StatsHandler) System(c *gin.Context) {
	result, err := h.statsSvc.SystemStats(c.Request.Context())
	if err != nil {
		handleStatsError(c, err)
		return
	}
	response.OK(c, result)
}

// Finance revenue, payroll and margin for a period
// GET /api/v1/stats/finance?from=&to=
func (h *StatsHandler) Finance(c *gin.Context) {
	var r dto.DateRange
	if err := c.ShouldBindQuery(&r); err != nil {
		response.BadRequest(c, 10001, "from and to are required")
		return
	}

	result, err := h.statsSvc.PeriodFinance(c.Request.Context(), &r)
	if err != nil {
		handleStatsError(c, err)
		return
	}
	response.OK(c, result)
}

// Admin per-dispatcher, per-employee and per-client breakdown
// GET /api/v1/stats/admin?from=&to=
func (h *StatsHandler) Admin(c *gin.Context) {
	var r dto.DateRange
	if err := c.ShouldBindQuery(&r); err != nil {
		response.BadRequest(c, 10001, "from and to are required")
		return
	}

	result, err := h.statsSvc.AdminStats(c.Request.Context(), &r)
	if err != nil {
		handleStatsError(c, err)
		return
	}
	response.OK(c, result)
}

// Payroll per-employee shifts for a period
// GET /api/v1/reports/payroll?from=&to=&employee_ids=
func (h *StatsHandler) Payroll(c *gin.Context) {
	var req dto.PayrollRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from and to are required")
		return
	}

	result, err := h.statsSvc.PayrollReport(c.Request.Context(), &req)
	if err != nil {
		handleStatsError(c, err)
		return
	}
	response.OK(c, result)
}

func handleStatsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 15001, "date range must be YYYY-MM-DD with from <= to")
	default:
		response.InternalError(c)
	}
}
