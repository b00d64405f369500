package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/service"
	pkgerrors "dispetcher/backend/pkg/errors"
	"dispetcher/backend/pkg/response"
)

// ────────────────────── dispatchers ──────────────────────

// DispatcherHandler dispatcher accounts
type DispatcherHandler struct {
	dispatcherSvc service.DispatcherService
}

// NewDispatcherHandler creates a DispatcherHandler.
func NewDispatcherHandler(dispatcherSvc service.DispatcherService) *DispatcherHandler {
	return &DispatcherHandler{dispatcherSvc: dispatcherSvc}
}

// List
// GET /api/v1/dispatchers
func (h *DispatcherHandler) List(c *gin.Context) {
	list, err := h.dispatcherSvc.List(c.Request.Context())
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Update
// PATCH /api/v1/dispatchers/:id
func (h *DispatcherHandler) Update(c *gin.Context) {
	var req dto.UpdateDispatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	d, err := h.dispatcherSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, d)
}

// ToggleGeoAccess
// PUT /api/v1/dispatchers/:id/geo-access
func (h *DispatcherHandler) ToggleGeoAccess(c *gin.Context) {
	d, err := h.dispatcherSvc.ToggleGeoAccess(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, d)
}

// SetStatus
// PUT /api/v1/dispatchers/:id/status
func (h *DispatcherHandler) SetStatus(c *gin.Context) {
	var req dto.SetDispatcherStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	d, err := h.dispatcherSvc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, d)
}

// ────────────────────── customers ──────────────────────

// CustomerHandler customer directory
type CustomerHandler struct {
	customerSvc service.CustomerService
}

// NewCustomerHandler creates a CustomerHandler.
func NewCustomerHandler(customerSvc service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerSvc: customerSvc}
}

// List
// GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	list, err := h.customerSvc.List(c.Request.Context())
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Create returns 200 with the existing record when the name is taken
// POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	cust, created, err := h.customerSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	if !created {
		response.OK(c, cust)
		return
	}
	response.Created(c, cust)
}

// Update
// PATCH /api/v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	cust, err := h.customerSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, cust)
}

// ────────────────────── activity log ──────────────────────

// ActivityHandler audit trail
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// List newest first
// GET /api/v1/logs
func (h *ActivityHandler) List(c *gin.Context) {
	list, err := h.activitySvc.List(c.Request.Context())
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// ────────────────────── chat ──────────────────────

// ChatHandler worker/dispatcher messaging
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// List a worker's conversation; workers only see their own
// GET /api/v1/chats?worker_id=
func (h *ChatHandler) List(c *gin.Context) {
	var req dto.ChatListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}
	if isWorker(c) {
		userID, ok := MustGetUserID(c)
		if !ok {
			return
		}
		req.WorkerID = userID
	}

	list, err := h.chatSvc.List(c.Request.Context(), req.WorkerID)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// Send the sender is the caller unless a dispatcher sends on behalf of someone
// POST /api/v1/chats
func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}
	if req.SenderID == "" || isWorker(c) {
		req.SenderID = userID
	}

	msg, err := h.chatSvc.Send(c.Request.Context(), &req)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.Created(c, msg)
}

// MarkRead marks worker to dispatcher messages as read. Workers act on their own conversation only.
// PUT /api/v1/chats/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}
	if isWorker(c) {
		userID, ok := MustGetUserID(c)
		if !ok {
			return
		}
		req.WorkerID = userID
	}
	if req.WorkerID == "" {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	n, err := h.chatSvc.MarkRead(c.Request.Context(), req.WorkerID, req.DispatcherID)
	if err != nil {
		handleDirectoryError(c, err)
		return
	}
	response.OK(c, gin.H{"updated": n})
}

func handleDirectoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDispatcherNotFound):
		response.NotFound(c, 17001, "dispatcher not found")
	case errors.Is(err, service.ErrCustomerNotFound):
		response.NotFound(c, 17002, "customer not found")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		respondStale(c)
	default:
		response.InternalError(c)
	}
}
