package dto

import (
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/inventory"
)

// CreateLotRequest registers a stock lot for a material's first stocking.
type CreateLotRequest struct {
	RawMaterialID  string         `json:"rawMaterialId" binding:"required"`
	CostPerKg      types.Money    `json:"costPerKg"`
	ThresholdKg    types.Quantity `json:"thresholdKg"`
	ReorderPointKg types.Quantity `json:"reorderPointKg"`
	MaxStockKg     types.Quantity `json:"maxStockKg"`
	Location       string         `json:"location"`
}

// ToEntity converts the request to a domain lot.
func (r CreateLotRequest) ToEntity() (*inventory.Lot, error) {
	materialID, err := id.Parse(r.RawMaterialID)
	if err != nil {
		return nil, err
	}
	lot := inventory.NewLot(materialID, r.CostPerKg)
	lot.ThresholdKg = r.ThresholdKg
	lot.ReorderPointKg = r.ReorderPointKg
	lot.MaxStockKg = r.MaxStockKg
	lot.Location = r.Location
	return lot, nil
}

// RestockRequest adds physical stock to a lot.
type RestockRequest struct {
	QuantityKg types.Quantity `json:"quantityKg" binding:"required"`
	Notes      string         `json:"notes"`
}

// AdjustRequest corrects the physical stock to a counted value.
type AdjustRequest struct {
	NewStockKg types.Quantity `json:"newStockKg"`
	Reason     string         `json:"reason" binding:"required"`
}

// AllocationRequest reserves or frees stock against an order.
type AllocationRequest struct {
	OrderID    string         `json:"orderId" binding:"required"`
	QuantityKg types.Quantity `json:"quantityKg" binding:"required"`
	Notes      string         `json:"notes"`
}

// UpdatePolicyRequest edits the non-quantity lot settings.
type UpdatePolicyRequest struct {
	ThresholdKg    types.Quantity `json:"thresholdKg"`
	ReorderPointKg types.Quantity `json:"reorderPointKg"`
	MaxStockKg     types.Quantity `json:"maxStockKg"`
	CostPerKg      types.Money    `json:"costPerKg"`
	Location       string         `json:"location"`
}

// ToPolicy converts the request to the domain policy.
func (r UpdatePolicyRequest) ToPolicy() inventory.Policy {
	return inventory.Policy{
		ThresholdKg:    r.ThresholdKg,
		ReorderPointKg: r.ReorderPointKg,
		MaxStockKg:     r.MaxStockKg,
		CostPerKg:      r.CostPerKg,
		Location:       r.Location,
	}
}
