package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/service"
	pkgerrors "dispetcher/backend/pkg/errors"
	"dispetcher/backend/pkg/response"
)

// FinanceHandler client payments and balances
type FinanceHandler struct {
	financeSvc service.FinanceService
}

// NewFinanceHandler creates a FinanceHandler.
func NewFinanceHandler(financeSvc service.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeSvc: financeSvc}
}

// DistributePayment spreads a client payment over unpaid orders, oldest first
// POST /api/v1/finance/payments
func (h *FinanceHandler) DistributePayment(c *gin.Context) {
	var req dto.ClientPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.financeSvc.DistributeClientPayment(c.Request.Context(), req.ClientName, req.Amount)
	if err != nil {
		handleFinanceError(c, err)
		return
	}
	response.OK(c, result)
}

// Debtors clients with outstanding debt, largest first
// GET /api/v1/finance/debtors
func (h *FinanceHandler) Debtors(c *gin.Context) {
	list, err := h.financeSvc.Debtors(c.Request.Context())
	if err != nil {
		handleFinanceError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// WorkerFinance today, month and total earnings of a worker
// GET /api/v1/finance/workers/:id
func (h *FinanceHandler) WorkerFinance(c *gin.Context) {
	result, err := h.financeSvc.WorkerFinance(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleFinanceError(c, err)
		return
	}
	response.OK(c, result)
}

func handleFinanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		response.BadRequest(c, 14001, "amount must be positive")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 16001, "employee not found")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		respondStale(c)
	default:
		response.InternalError(c)
	}
}
