package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/service"
	pkgerrors "dispetcher/backend/pkg/errors"
	"dispetcher/backend/pkg/response"
)

// OrderHandler orders, assignments and shifts
type OrderHandler struct {
	orderSvc   service.OrderService
	assignSvc  service.AssignmentService
	shiftSvc   service.ShiftService
	financeSvc service.FinanceService
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(
	orderSvc service.OrderService,
	assignSvc service.AssignmentService,
	shiftSvc service.ShiftService,
	financeSvc service.FinanceService,
) *OrderHandler {
	return &OrderHandler{
		orderSvc:   orderSvc,
		assignSvc:  assignSvc,
		shiftSvc:   shiftSvc,
		financeSvc: financeSvc,
	}
}

// ────────────────────── orders ──────────────────────

// List
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderSvc.List(c.Request.Context())
	if err != nil {
		handleOrderError(c, err)
		return
	}
	response.OKList(c, orders, len(orders))
}

// Create
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	order, err := h.orderSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	response.Created(c, order)
}

// GetByID
// GET /api/v1/orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	order, err := h.orderSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleOrderError(c, err)
		return
	}
	response.OK(c, order)
}

// SetGeoRequired
// PUT /api/v1/orders/:id/geo
func (h *OrderHandler) SetGeoRequired(c *gin.Context) {
	var req dto.SetGeoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	order, err := h.orderSvc.SetGeoRequired(c.Request.Context(), c.Param("id"), *req.Required)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	response.OK(c, order)
}

// SetStatus completes or cancels an order
// PUT /api/v1/orders/:id/status
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req dto.SetOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	order, err := h.orderSvc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	response.OK(c, order)
}

// SaveFinance edits hours, rates and the paid amount
// PUT /api/v1/orders/:id/finance
func (h *OrderHandler) SaveFinance(c *gin.Context) {
	var req dto.OrderFinanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	order, err := h.financeSvc.SaveOrderFinance(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	response.OK(c, order)
}

// ────────────────────── assignments ──────────────────────

// Claim makes a dispatcher the order's owner; defaults to the caller
// POST /api/v1/orders/:id/claim
func (h *OrderHandler) Claim(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClaimOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "invalid request parameters")
			return
		}
	}
	if req.DispatcherID == "" {
		req.DispatcherID = userID
	}

	res, err := h.assignSvc.ClaimOrder(c.Request.Context(), c.Param("id"), req.DispatcherID)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	respondResult(c, res)
}

// ClaimWorker a worker takes a slot; 409 on a time conflict
// POST /api/v1/orders/:id/workers/:workerId/claim
func (h *OrderHandler) ClaimWorker(c *gin.Context) {
	res, err := h.assignSvc.ClaimOrderWorker(c.Request.Context(), c.Param("id"), c.Param("workerId"))
	if err != nil {
		handleOrderError(c, err)
		return
	}
	respondResult(c, res)
}

// AssignWorker dispatcher assignment, ignores conflicts and notifies
// POST /api/v1/orders/:id/workers/:workerId/assign
func (h *OrderHandler) AssignWorker(c *gin.Context) {
	res, err := h.assignSvc.AssignWorkerToOrder(c.Request.Context(), c.Param("id"), c.Param("workerId"))
	if err != nil {
		handleOrderError(c, err)
		return
	}
	respondResult(c, res)
}

// ConfirmWorker
// POST /api/v1/orders/:id/workers/:workerId/confirm
func (h *OrderHandler) ConfirmWorker(c *gin.Context) {
	res, err := h.assignSvc.ConfirmAssignment(c.Request.Context(), c.Param("id"), c.Param("workerId"))
	if err != nil {
		handleOrderError(c, err)
		return
	}
	respondResult(c, res)
}

// RejectWorker
// POST /api/v1/orders/:id/workers/:workerId/reject
func (h *OrderHandler) RejectWorker(c *gin.Context) {
	res, err := h.assignSvc.RejectAssignment(c.Request.Context(), c.Param("id"), c.Param("workerId"))
	if err != nil {
		handleOrderError(c, err)
		return
	}
	respondResult(c, res)
}

// PatchWorker
// PATCH /api/v1/orders/:id/workers/:workerId
func (h *OrderHandler) PatchWorker(c *gin.Context) {
	var patch dto.AssignmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	res, err := h.assignSvc.UpdateAssignmentDetail(c.Request.Context(), c.Param("id"), c.Param("workerId"), &patch)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	respondResult(c, res)
}

// ────────────────────── shifts ──────────────────────

// StartShift
// POST /api/v1/orders/:id/workers/:workerId/start
func (h *OrderHandler) StartShift(c *gin.Context) {
	res, err := h.shiftSvc.StartWork(c.Request.Context(), c.Param("workerId"), c.Param("id"))
	if err != nil {
		handleOrderError(c, err)
		return
	}
	respondResult(c, res)
}

// FinishShift
// POST /api/v1/orders/:id/workers/:workerId/finish
func (h *OrderHandler) FinishShift(c *gin.Context) {
	out, err := h.shiftSvc.FinishWork(c.Request.Context(), c.Param("workerId"), c.Param("id"))
	if err != nil {
		handleOrderError(c, err)
		return
	}
	response.OK(c, dto.ShiftFinishResponse{
		ActionResponse:     dto.ActionResponse{Applied: out.Applied, Reason: out.ReasonText()},
		Hours:              out.Hours,
		Payout:             out.Payout,
		CalculatedDuration: out.CalculatedDuration,
	})
}

func handleOrderError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		response.Conflict(c, 13001, conflict.Kind(), conflict.ConflictingOrderID)
	case errors.Is(err, service.ErrConflictTime):
		response.Conflict(c, 13001, service.KindConflictTime, "")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		respondStale(c)
	case errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, 12001, "order not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 13002, "worker is not assigned to this order")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 16001, "employee not found")
	case errors.Is(err, service.ErrInvalidAmount):
		response.BadRequest(c, 14001, "amounts must not be negative")
	default:
		response.InternalError(c)
	}
}
