// Package orders provides production order documents with line items,
// thread allocations and derived financial aggregates.
package orders

import (
	"context"
	"time"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/status"
)

// Priority of an order.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Item-level statuses. Items move independently of the order header:
// PENDING -> ALLOCATED (thread reserved) -> ASSIGNED (task created) ->
// IN_PROGRESS -> COMPLETED, with CANCELLED cutting in at any point.
const (
	ItemPending    = "PENDING"
	ItemAllocated  = "ALLOCATED"
	ItemAssigned   = "ASSIGNED"
	ItemInProgress = "IN_PROGRESS"
	ItemCompleted  = "COMPLETED"
	ItemCancelled  = "CANCELLED"
)

// ThreadAllocation records thread reserved from one stock lot for an item.
// The allocation engine is the source of truth for quantities; this record
// mirrors the reservation on the order side for costing.
type ThreadAllocation struct {
	RawMaterialID id.ID          `db:"raw_material_id" json:"rawMaterialId"`
	LotID         id.ID          `db:"lot_id" json:"lotId"`
	AllocatedKg   types.Quantity `db:"allocated_kg" json:"allocatedKg"`
	CostPerKg     types.Money    `db:"cost_per_kg" json:"costPerKg"`
	AllocatedAt   time.Time      `db:"allocated_at" json:"allocatedAt"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	Size  string `db:"size" json:"size,omitempty"`
	Color string `db:"color" json:"color,omitempty"`

	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// TotalPrice = Quantity x UnitPrice, recomputed on every change.
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`

	ThreadAllocations []ThreadAllocation `db:"-" json:"threadAllocations,omitempty"`

	EstimatedLaborHours types.Quantity `db:"estimated_labor_hours" json:"estimatedLaborHours"`
	TotalWage           types.Money    `db:"total_wage" json:"totalWage"`

	Status string `db:"status" json:"status"`
}

// AllocatedKg sums the item's thread reservations.
func (i *OrderItem) AllocatedKg() types.Quantity {
	var total types.Quantity
	for _, a := range i.ThreadAllocations {
		total += a.AllocatedKg
	}
	return total
}

// Order is a client production order.
type Order struct {
	entity.Document

	ClientID id.ID `db:"client_id" json:"clientId"`

	DeliveryDate *time.Time `db:"delivery_date" json:"deliveryDate,omitempty"`

	Priority Priority `db:"priority" json:"priority"`
	Status   string   `db:"status" json:"status"`

	// Approval stamp, set when the draft is confirmed.
	ApprovedBy string     `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approvedAt,omitempty"`

	// AssignedContractorID is set when production is handed to a contractor.
	AssignedContractorID *id.ID `db:"assigned_contractor_id" json:"assignedContractorId,omitempty"`

	Items []OrderItem `db:"-" json:"items"`

	// Derived aggregates, recomputed by RecomputeTotals on every item
	// change. Write paths never set them directly.
	TotalItems      int            `db:"total_items" json:"totalItems"`
	TotalQuantity   int64          `db:"total_quantity" json:"totalQuantity"`
	TotalValue      types.Money    `db:"total_value" json:"totalValue"`
	TotalThreadKg   types.Quantity `db:"total_thread_kg" json:"totalThreadKg"`
	TotalLaborHours types.Quantity `db:"total_labor_hours" json:"totalLaborHours"`
	TotalCost       types.Money    `db:"total_cost" json:"totalCost"`
	EstimatedProfit types.Money    `db:"estimated_profit" json:"estimatedProfit"`

	StatusHistory []status.HistoryEntry `db:"-" json:"statusHistory,omitempty"`
}

// NewOrder creates a draft order for a client. The order number is assigned
// by the service on create.
func NewOrder(clientID id.ID) *Order {
	return &Order{
		Document: entity.NewDocument(),
		ClientID: clientID,
		Priority: PriorityMedium,
		Status:   status.OrderDraft,
	}
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if o.Status == "" {
		return apperror.NewValidation("status is required").
			WithDetail("field", "status")
	}
	switch o.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
	default:
		return apperror.NewValidation("unknown priority").
			WithDetail("priority", string(o.Priority))
	}
	for idx, item := range o.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("item product is required").
				WithDetail("item_index", idx)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("item_index", idx).
				WithDetail("quantity", item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("item unit price cannot be negative").
				WithDetail("item_index", idx)
		}
	}
	return nil
}

// Item returns the item with the given line id, or nil.
func (o *Order) Item(lineID id.ID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].LineID == lineID {
			return &o.Items[i]
		}
	}
	return nil
}
