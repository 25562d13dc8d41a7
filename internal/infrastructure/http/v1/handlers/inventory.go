package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/inventory"
	"aurotex/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles the stock ledger endpoints.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /inventory/lots
func (h *InventoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(ctx, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Get handles GET /inventory/lots/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	lot, err := h.service.GetByID(ctx, lotID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// GetByMaterial handles GET /inventory/lots/by-material/:materialId
func (h *InventoryHandler) GetByMaterial(c *gin.Context) {
	ctx := c.Request.Context()

	materialID, err := id.Parse(c.Param("materialId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", "materialId"))
		return
	}

	lot, err := h.service.GetByMaterial(ctx, materialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// Create handles POST /inventory/lots
func (h *InventoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateLotRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid raw material id"))
		return
	}

	created, err := h.service.CreateLot(ctx, lot)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Delete handles DELETE /inventory/lots/:id
func (h *InventoryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, lotID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Restock handles POST /inventory/lots/:id/restock
func (h *InventoryHandler) Restock(c *gin.Context) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RestockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.Restock(ctx, lotID, req.QuantityKg, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// Adjust handles POST /inventory/lots/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.Adjust(ctx, lotID, req.NewStockKg, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// Allocate handles POST /inventory/lots/:id/allocate
func (h *InventoryHandler) Allocate(c *gin.Context) {
	h.allocation(c, h.service.Allocate)
}

// Release handles POST /inventory/lots/:id/release
func (h *InventoryHandler) Release(c *gin.Context) {
	h.allocation(c, h.service.Release)
}

// Consume handles POST /inventory/lots/:id/consume
func (h *InventoryHandler) Consume(c *gin.Context) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	req, orderID, ok := h.bindAllocation(c)
	if !ok {
		return
	}

	lot, err := h.service.Consume(ctx, lotID, orderID, req.QuantityKg, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// UpdatePolicy handles PUT /inventory/lots/:id/policy
func (h *InventoryHandler) UpdatePolicy(c *gin.Context) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePolicyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.UpdatePolicy(ctx, lotID, req.ToPolicy())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// Movements handles GET /inventory/lots/:id/movements
func (h *InventoryHandler) Movements(c *gin.Context) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)

	movements, err := h.service.GetMovements(ctx, lotID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

// LowStock handles GET /inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	lots, err := h.service.ListLowStock(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": lots})
}

func (h *InventoryHandler) allocation(
	c *gin.Context,
	op func(ctx context.Context, lotID, orderID id.ID, qty types.Quantity) (*inventory.Lot, error),
) {
	ctx := c.Request.Context()

	lotID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	req, orderID, ok := h.bindAllocation(c)
	if !ok {
		return
	}

	lot, err := op(ctx, lotID, orderID, req.QuantityKg)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

func (h *InventoryHandler) bindAllocation(c *gin.Context) (dto.AllocationRequest, id.ID, bool) {
	var req dto.AllocationRequest
	if !h.BindJSON(c, &req) {
		return req, id.Nil(), false
	}

	orderID, err := id.Parse(req.OrderID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id"))
		return req, id.Nil(), false
	}
	return req, orderID, true
}
