package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/service"
	pkgerrors "dispetcher/backend/pkg/errors"
	"dispetcher/backend/pkg/response"
)

// EmployeeHandler worker directory, reviews, GPS and SOS
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler creates an EmployeeHandler.
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// ── directory ──

// List
// GET /api/v1/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	list, err := h.employeeSvc.List(c.Request.Context())
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// GetByID
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetByID(c *gin.Context) {
	emp, err := h.employeeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// Create
// POST /api/v1/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	emp, err := h.employeeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.Created(c, emp)
}

// Update
// PATCH /api/v1/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	emp, err := h.employeeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// AddReview
// POST /api/v1/employees/:id/reviews
func (h *EmployeeHandler) AddReview(c *gin.Context) {
	var req dto.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	emp, err := h.employeeSvc.AddReview(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// ── location ──

// UpdateLocation live GPS fix
// POST /api/v1/employees/:id/location
func (h *EmployeeHandler) UpdateLocation(c *gin.Context) {
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "lat and lng are required")
		return
	}

	emp, err := h.employeeSvc.UpdateLocation(c.Request.Context(), c.Param("id"), *req.Lat, *req.Lng)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// BufferLocation fix recorded while the worker was offline
// POST /api/v1/employees/:id/offline-locations
func (h *EmployeeHandler) BufferLocation(c *gin.Context) {
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "lat and lng are required")
		return
	}

	if err := h.employeeSvc.BufferLocation(c.Request.Context(), c.Param("id"), *req.Lat, *req.Lng); err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.Created(c, nil)
}

// SyncOfflineLocations applies the newest buffered fix
// POST /api/v1/employees/offline-locations/sync
func (h *EmployeeHandler) SyncOfflineLocations(c *gin.Context) {
	result, err := h.employeeSvc.SyncOfflineLocations(c.Request.Context())
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, result)
}

// ── emergency ──

// TriggerEmergency SOS button
// POST /api/v1/employees/:id/emergency
func (h *EmployeeHandler) TriggerEmergency(c *gin.Context) {
	var req dto.EmergencyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "invalid request parameters")
			return
		}
	}

	emp, err := h.employeeSvc.TriggerEmergency(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// ResolveEmergency
// DELETE /api/v1/employees/:id/emergency
func (h *EmployeeHandler) ResolveEmergency(c *gin.Context) {
	emp, err := h.employeeSvc.ResolveEmergency(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

func handleEmployeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 16001, "employee not found")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		respondStale(c)
	default:
		response.InternalError(c)
	}
}
