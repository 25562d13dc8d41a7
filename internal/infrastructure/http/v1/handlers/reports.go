package handlers

import (
	"github.com/gin-gonic/gin"

	"aurotex/internal/core/apperror"
	"aurotex/internal/domain/reports"
	"aurotex/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles the read-only management reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetInventoryValuation handles GET /reports/inventory-valuation
func (h *ReportsHandler) GetInventoryValuation(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.InventoryValuationQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid material id"))
		return
	}

	report, err := h.service.GetInventoryValuation(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetOrderFinancialSummary handles GET /reports/order-financials
func (h *ReportsHandler) GetOrderFinancialSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.OrderFinancialQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid client id"))
		return
	}

	report, err := h.service.GetOrderFinancialSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetContractorPerformance handles GET /reports/contractor-performance
func (h *ReportsHandler) GetContractorPerformance(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ContractorPerformanceQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetContractorPerformance(ctx, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}
