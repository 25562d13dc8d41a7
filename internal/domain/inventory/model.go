// Package inventory provides the thread stock ledger and allocation engine.
//
// A Lot is the authoritative quantity record for one raw material. Physical
// stock (currentStockKg) and reservations against orders (allocatedKg) are
// tracked separately; availableKg is always derived, never authored. Every
// quantity change appends exactly one immutable movement.
package inventory

import (
	"context"
	"time"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
)

// MovementType classifies one ledger entry.
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAllocated  MovementType = "ALLOCATED"
	MovementReleased   MovementType = "RELEASED"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// Movement is one immutable audit-log entry for a lot.
// Movements are never updated or deleted, only appended.
type Movement struct {
	// LineID is the unique identifier of this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// LotID is the lot this movement belongs to
	LotID id.ID `db:"lot_id" json:"lotId"`

	Date     time.Time      `db:"date" json:"date"`
	Type     MovementType   `db:"type" json:"type"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// OrderID is set for ALLOCATED / RELEASED / OUT movements
	OrderID *id.ID `db:"order_id" json:"orderId,omitempty"`

	Notes       string `db:"notes" json:"notes,omitempty"`
	PerformedBy string `db:"performed_by" json:"performedBy"`
}

// Alerts are recomputed from current thresholds on every mutation.
type Alerts struct {
	LowStock bool `db:"alert_low_stock" json:"lowStock"`

	// NearExpiry is a placeholder: no expiry tracking exists upstream,
	// so it stays false until expiry dates are introduced.
	NearExpiry bool `db:"alert_near_expiry" json:"nearExpiry"`

	Overstock bool `db:"alert_overstock" json:"overstock"`
}

// Lot tracks physical and reserved quantity for one raw material.
type Lot struct {
	entity.BaseDocument

	// RawMaterialID references the material this lot stocks
	RawMaterialID id.ID `db:"raw_material_id" json:"rawMaterialId"`

	// Quantity state. AvailableKg and TotalValue are derived projections:
	// they are recomputed from their inputs on every write and no write path
	// may set them independently.
	CurrentStockKg types.Quantity `db:"current_stock_kg" json:"currentStockKg"`
	AllocatedKg    types.Quantity `db:"allocated_kg" json:"allocatedKg"`
	AvailableKg    types.Quantity `db:"available_kg" json:"availableKg"`

	// Policy bounds
	ThresholdKg    types.Quantity `db:"threshold_kg" json:"thresholdKg"`
	ReorderPointKg types.Quantity `db:"reorder_point_kg" json:"reorderPointKg"`
	MaxStockKg     types.Quantity `db:"max_stock_kg" json:"maxStockKg"`

	CostPerKg  types.Money `db:"cost_per_kg" json:"costPerKg"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	Location string `db:"location" json:"location,omitempty"`

	LastRestockedAt time.Time `db:"last_restocked_at" json:"lastRestockedDate"`
	LastRestockedBy string    `db:"last_restocked_by" json:"lastRestockedBy"`

	// Alert flags persist as plain columns so low-stock listings stay an
	// indexed query.
	Alerts `json:"alerts"`

	// Movements are loaded on demand; appended-to, never rewritten.
	Movements []Movement `db:"-" json:"stockMovements,omitempty"`
}

// NewLot creates a lot for a material's first stocking.
func NewLot(rawMaterialID id.ID, costPerKg types.Money) *Lot {
	return &Lot{
		BaseDocument:  entity.NewBaseDocument(),
		RawMaterialID: rawMaterialID,
		CostPerKg:     costPerKg,
	}
}

// Validate implements entity.Validatable.
func (l *Lot) Validate(ctx context.Context) error {
	if id.IsNil(l.RawMaterialID) {
		return apperror.NewValidation("raw material is required").
			WithDetail("field", "rawMaterialId")
	}
	if l.CurrentStockKg.IsNegative() {
		return apperror.NewValidation("current stock cannot be negative").
			WithDetail("field", "currentStockKg")
	}
	if l.AllocatedKg.IsNegative() {
		return apperror.NewValidation("allocated stock cannot be negative").
			WithDetail("field", "allocatedKg")
	}
	if l.AllocatedKg > l.CurrentStockKg {
		return apperror.NewValidation("allocated stock cannot exceed current stock").
			WithDetail("allocated_kg", l.AllocatedKg.Float64()).
			WithDetail("current_stock_kg", l.CurrentStockKg.Float64())
	}
	if l.ThresholdKg.IsNegative() || l.ReorderPointKg.IsNegative() || l.MaxStockKg.IsNegative() {
		return apperror.NewValidation("policy bounds cannot be negative")
	}
	return nil
}

func newMovement(lotID id.ID, mt MovementType, qty types.Quantity, orderID *id.ID, notes, performedBy string) Movement {
	return Movement{
		LineID:      id.New(),
		LotID:       lotID,
		Date:        time.Now().UTC(),
		Type:        mt,
		Quantity:    qty,
		OrderID:     orderID,
		Notes:       notes,
		PerformedBy: performedBy,
	}
}
