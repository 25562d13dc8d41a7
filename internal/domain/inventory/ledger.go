package inventory

import (
	"time"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
)

// Ledger operations mutate a lot in memory and return the single movement
// describing the change. Callers persist the lot and the movement together
// in one transaction. Each operation finishes with recompute(), so the
// derived fields and alert flags are never stale.

// Restock increases physical stock.
func (l *Lot) Restock(qty types.Quantity, performedBy, notes string) (Movement, error) {
	if !qty.IsPositive() {
		return Movement{}, apperror.NewValidation("restock quantity must be positive").
			WithDetail("quantity", qty.String())
	}

	l.CurrentStockKg += qty
	l.LastRestockedAt = time.Now().UTC()
	l.LastRestockedBy = performedBy
	l.recompute()

	return newMovement(l.ID, MovementIn, qty, nil, notes, performedBy), nil
}

// Adjust sets physical stock to an absolute value (cycle count correction).
// The movement quantity records the signed delta. Stock can never be adjusted
// below the allocated amount; reservations stay backed by physical stock.
func (l *Lot) Adjust(newStockKg types.Quantity, performedBy, reason string) (Movement, error) {
	if newStockKg.IsNegative() {
		return Movement{}, apperror.NewValidation("adjusted stock cannot be negative").
			WithDetail("quantity", newStockKg.String())
	}
	if newStockKg < l.AllocatedKg {
		return Movement{}, apperror.NewValidation("adjusted stock cannot fall below allocated quantity").
			WithDetail("new_stock_kg", newStockKg.Float64()).
			WithDetail("allocated_kg", l.AllocatedKg.Float64())
	}

	delta := newStockKg - l.CurrentStockKg
	l.CurrentStockKg = newStockKg
	l.recompute()

	return newMovement(l.ID, MovementAdjustment, delta, nil, reason, performedBy), nil
}

// Allocate reserves stock for an order. Physical stock is untouched;
// only the reserved share grows. Fails when the request exceeds what
// is currently unreserved.
func (l *Lot) Allocate(orderID id.ID, qty types.Quantity, performedBy string) (Movement, error) {
	if !qty.IsPositive() {
		return Movement{}, apperror.NewValidation("allocation quantity must be positive").
			WithDetail("quantity", qty.String())
	}
	available := l.CurrentStockKg - l.AllocatedKg
	if qty > available {
		return Movement{}, apperror.NewInsufficientStock(l.RawMaterialID.String(), qty.Float64(), available.Float64())
	}

	l.AllocatedKg += qty
	l.recompute()

	oid := orderID
	return newMovement(l.ID, MovementAllocated, qty, &oid, "", performedBy), nil
}

// Release returns previously reserved stock to the available share.
// Releasing more than is currently reserved is rejected outright rather
// than clamped; an over-release always signals a caller accounting bug.
func (l *Lot) Release(orderID id.ID, qty types.Quantity, performedBy string) (Movement, error) {
	if !qty.IsPositive() {
		return Movement{}, apperror.NewValidation("release quantity must be positive").
			WithDetail("quantity", qty.String())
	}
	if qty > l.AllocatedKg {
		return Movement{}, apperror.NewOverRelease(l.RawMaterialID.String(), qty.Float64(), l.AllocatedKg.Float64())
	}

	l.AllocatedKg -= qty
	l.recompute()

	oid := orderID
	return newMovement(l.ID, MovementReleased, qty, &oid, "", performedBy), nil
}

// Consume converts a reservation into consumption: both physical stock
// and the reserved share shrink by the same amount. Used when allocated
// thread is actually issued to production.
func (l *Lot) Consume(orderID id.ID, qty types.Quantity, performedBy, notes string) (Movement, error) {
	if !qty.IsPositive() {
		return Movement{}, apperror.NewValidation("consume quantity must be positive").
			WithDetail("quantity", qty.String())
	}
	if qty > l.AllocatedKg {
		return Movement{}, apperror.NewOverRelease(l.RawMaterialID.String(), qty.Float64(), l.AllocatedKg.Float64())
	}

	l.AllocatedKg -= qty
	l.CurrentStockKg -= qty
	l.recompute()

	oid := orderID
	return newMovement(l.ID, MovementOut, qty, &oid, notes, performedBy), nil
}

// recompute refreshes the derived projections and alert flags.
func (l *Lot) recompute() {
	l.AvailableKg = l.CurrentStockKg - l.AllocatedKg
	l.TotalValue = l.CurrentStockKg.Decimal().Mul(l.CostPerKg)
	l.Alerts = l.computeAlerts()
}

func (l *Lot) computeAlerts() Alerts {
	return Alerts{
		LowStock:   l.ThresholdKg.IsPositive() && l.CurrentStockKg <= l.ThresholdKg,
		NearExpiry: false,
		Overstock:  l.MaxStockKg.IsPositive() && l.CurrentStockKg > l.MaxStockKg,
	}
}

// NeedsReorder reports whether stock has fallen to the reorder point.
func (l *Lot) NeedsReorder() bool {
	return l.ReorderPointKg.IsPositive() && l.CurrentStockKg <= l.ReorderPointKg
}
