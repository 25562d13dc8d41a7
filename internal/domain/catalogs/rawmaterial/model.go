// Package rawmaterial provides the raw material catalog: the threads,
// fabrics and trims the stock ledger tracks.
package rawmaterial

import (
	"context"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/types"
)

// Kind groups materials by what they are used for.
type Kind string

const (
	KindThread Kind = "thread"
	KindFabric Kind = "fabric"
	KindTrim   Kind = "trim"
	KindOther  Kind = "other"
)

// RawMaterial is a purchasable production input. Quantity lives on the
// inventory lot, not here.
type RawMaterial struct {
	entity.Catalog

	Kind Kind `db:"kind" json:"kind"`

	// Color and composition identify thread variants (e.g. "navy",
	// "100% cotton 40s").
	Color       string `db:"color" json:"color,omitempty"`
	Composition string `db:"composition" json:"composition,omitempty"`

	// Unit is the stock-keeping unit; the ledger assumes kg.
	Unit string `db:"unit" json:"unit"`

	// DefaultCostPerKg seeds the lot cost on first stocking.
	DefaultCostPerKg types.Money `db:"default_cost_per_kg" json:"defaultCostPerKg"`

	// MinOrderQtyKg is the supplier's minimum purchase quantity.
	MinOrderQtyKg types.Quantity `db:"min_order_qty_kg" json:"minOrderQtyKg,omitempty"`

	SupplierName  string `db:"supplier_name" json:"supplierName,omitempty"`
	SupplierPhone string `db:"supplier_phone" json:"supplierPhone,omitempty"`
}

func New(name string, kind Kind) *RawMaterial {
	return &RawMaterial{
		Catalog: entity.NewCatalog("", name),
		Kind:    kind,
		Unit:    "kg",
	}
}

// Validate implements entity.Validatable.
func (m *RawMaterial) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}
	switch m.Kind {
	case KindThread, KindFabric, KindTrim, KindOther:
	default:
		return apperror.NewValidation("unknown material kind").
			WithDetail("kind", string(m.Kind))
	}
	if m.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}
	if m.DefaultCostPerKg.IsNegative() {
		return apperror.NewValidation("cost cannot be negative").
			WithDetail("field", "defaultCostPerKg")
	}
	if m.MinOrderQtyKg.IsNegative() {
		return apperror.NewValidation("minimum order quantity cannot be negative").
			WithDetail("field", "minOrderQtyKg")
	}
	return nil
}
