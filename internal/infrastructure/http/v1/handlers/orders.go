package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/orders"
	"aurotex/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles production order endpoints.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /document/orders
func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	if clientID := c.Query("clientId"); clientID != "" {
		parsed, err := id.Parse(clientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid client id"))
			return
		}
		result, err := h.service.ListByClient(ctx, parsed, query.ToFilter())
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, result)
		return
	}

	result, err := h.service.List(ctx, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Get handles GET /document/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetByID(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// GetByNumber handles GET /document/orders/by-number/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := h.service.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// Create handles POST /document/orders
func (h *OrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}

	created, err := h.service.Create(ctx, order)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /document/orders/:id - draft edits only.
func (h *OrderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := req.ToEntity(orderID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}

	updated, err := h.service.UpdateDraft(ctx, order)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// ChangeStatus handles POST /document/orders/:id/status
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.ChangeStatus(ctx, orderID, req.Status, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// Approve handles POST /document/orders/:id/approve
func (h *OrderHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ApproveOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.Approve(ctx, orderID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// Assign handles POST /document/orders/:id/assign
func (h *OrderHandler) Assign(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignContractorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	contractorID, err := id.Parse(req.ContractorID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid contractor id"))
		return
	}

	order, err := h.service.AssignContractor(ctx, orderID, contractorID, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// Cancel handles POST /document/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.Cancel(ctx, orderID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// AllocateThread handles POST /document/orders/:id/allocate-thread
func (h *OrderHandler) AllocateThread(c *gin.Context) {
	h.threadOp(c, h.service.AllocateThread)
}

// ReleaseThread handles POST /document/orders/:id/release-thread
func (h *OrderHandler) ReleaseThread(c *gin.Context) {
	h.threadOp(c, h.service.ReleaseThread)
}

// ConsumeThread handles POST /document/orders/:id/consume-thread
func (h *OrderHandler) ConsumeThread(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	req, itemLineID, materialID, ok := h.bindThreadRequest(c)
	if !ok {
		return
	}

	order, err := h.service.ConsumeThread(ctx, orderID, itemLineID, materialID, req.QuantityKg, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// SetItemStatus handles POST /document/orders/:id/item-status
func (h *OrderHandler) SetItemStatus(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetItemStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	itemLineID, err := id.Parse(req.ItemLineID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item line id"))
		return
	}

	order, err := h.service.SetItemStatus(ctx, orderID, itemLineID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

func (h *OrderHandler) threadOp(
	c *gin.Context,
	op func(ctx context.Context, orderID, itemLineID, rawMaterialID id.ID, qtyKg types.Quantity) (*orders.Order, error),
) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	req, itemLineID, materialID, ok := h.bindThreadRequest(c)
	if !ok {
		return
	}

	order, err := op(ctx, orderID, itemLineID, materialID, req.QuantityKg)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

func (h *OrderHandler) bindThreadRequest(c *gin.Context) (dto.ThreadAllocationRequest, id.ID, id.ID, bool) {
	var req dto.ThreadAllocationRequest
	if !h.BindJSON(c, &req) {
		return req, id.Nil(), id.Nil(), false
	}

	itemLineID, err := id.Parse(req.ItemLineID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item line id"))
		return req, id.Nil(), id.Nil(), false
	}

	materialID, err := id.Parse(req.RawMaterialID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid raw material id"))
		return req, id.Nil(), id.Nil(), false
	}
	return req, itemLineID, materialID, true
}
