package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/service"
	"dispetcher/backend/pkg/response"
)

const (
	xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsMime  = "text/calendar; charset=utf-8"
)

// ExportHandler file downloads
type ExportHandler struct {
	reportSvc   service.ReportService
	calendarSvc service.CalendarService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(reportSvc service.ReportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{reportSvc: reportSvc, calendarSvc: calendarSvc}
}

// PayrollWorkbook payroll report as .xlsx
// GET /api/v1/reports/payroll.xlsx?from=&to=&employee_ids=
func (h *ExportHandler) PayrollWorkbook(c *gin.Context) {
	var req dto.PayrollRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from and to are required")
		return
	}

	buf, filename, err := h.reportSvc.PayrollWorkbook(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxMime, buf.Bytes())
}

// WorkerCalendar the worker's shifts as iCalendar
// GET /api/v1/employees/:id/calendar.ics
func (h *ExportHandler) WorkerCalendar(c *gin.Context) {
	workerID := c.Param("id")
	body, err := h.calendarSvc.WorkerCalendar(c.Request.Context(), workerID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename*=UTF-8''"+url.QueryEscape(workerID+".ics"))
	c.Data(http.StatusOK, icsMime, []byte(body))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 15001, "date range must be YYYY-MM-DD with from <= to")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 16001, "employee not found")
	default:
		response.InternalError(c)
	}
}
