package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func newTestLot(t *testing.T, stockKg float64) *Lot {
	t.Helper()
	lot := NewLot(id.New(), types.MustMoney("12.50"))
	lot.ThresholdKg = qty(20)
	lot.ReorderPointKg = qty(25)
	lot.MaxStockKg = qty(500)
	if stockKg > 0 {
		_, err := lot.Restock(qty(stockKg), "tester", "initial")
		require.NoError(t, err)
	}
	return lot
}

func TestLot_Restock(t *testing.T) {
	lot := newTestLot(t, 0)

	m, err := lot.Restock(qty(100), "alice", "delivery #42")
	require.NoError(t, err)

	assert.Equal(t, qty(100), lot.CurrentStockKg)
	assert.Equal(t, qty(100), lot.AvailableKg)
	assert.True(t, lot.AllocatedKg.IsZero())
	assert.Equal(t, "alice", lot.LastRestockedBy)
	assert.False(t, lot.LastRestockedAt.IsZero())

	assert.Equal(t, MovementIn, m.Type)
	assert.Equal(t, qty(100), m.Quantity)
	assert.Equal(t, "alice", m.PerformedBy)
	assert.Nil(t, m.OrderID)

	// total value = 100 kg x 12.50
	assert.True(t, lot.TotalValue.Equal(types.MustMoney("1250")), "got %s", lot.TotalValue)
}

func TestLot_Restock_RejectsNonPositive(t *testing.T) {
	lot := newTestLot(t, 100)

	for _, v := range []float64{0, -5} {
		_, err := lot.Restock(qty(v), "alice", "")
		require.Error(t, err)
		assert.Equal(t, qty(100), lot.CurrentStockKg)
	}
}

func TestLot_AllocateRelease_RoundTrip(t *testing.T) {
	lot := newTestLot(t, 100)
	orderID := id.New()

	m, err := lot.Allocate(orderID, qty(30), "alice")
	require.NoError(t, err)
	assert.Equal(t, qty(100), lot.CurrentStockKg, "allocation must not touch physical stock")
	assert.Equal(t, qty(30), lot.AllocatedKg)
	assert.Equal(t, qty(70), lot.AvailableKg)
	require.NotNil(t, m.OrderID)
	assert.Equal(t, orderID, *m.OrderID)
	assert.Equal(t, MovementAllocated, m.Type)

	m, err = lot.Release(orderID, qty(10), "alice")
	require.NoError(t, err)
	assert.Equal(t, qty(100), lot.CurrentStockKg)
	assert.Equal(t, qty(20), lot.AllocatedKg)
	assert.Equal(t, qty(80), lot.AvailableKg)
	assert.Equal(t, MovementReleased, m.Type)
}

func TestLot_Allocate_InsufficientStock(t *testing.T) {
	lot := newTestLot(t, 100)
	_, err := lot.Allocate(id.New(), qty(60), "alice")
	require.NoError(t, err)

	// 40 kg remain unreserved
	_, err = lot.Allocate(id.New(), qty(40.0001), "alice")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.InDelta(t, 40.0001, appErr.Details["requested_kg"], 1e-9)
	assert.InDelta(t, 40.0, appErr.Details["available_kg"], 1e-9)

	// state untouched after the rejection
	assert.Equal(t, qty(60), lot.AllocatedKg)
	assert.Equal(t, qty(40), lot.AvailableKg)

	// exact remainder still allocatable
	_, err = lot.Allocate(id.New(), qty(40), "alice")
	require.NoError(t, err)
	assert.True(t, lot.AvailableKg.IsZero())
}

func TestLot_Release_OverRelease(t *testing.T) {
	lot := newTestLot(t, 100)
	orderID := id.New()
	_, err := lot.Allocate(orderID, qty(30), "alice")
	require.NoError(t, err)

	_, err = lot.Release(orderID, qty(30.0001), "alice")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeOverRelease, appErr.Code)
	assert.Equal(t, qty(30), lot.AllocatedKg, "failed release must not change state")
}

func TestLot_Adjust(t *testing.T) {
	lot := newTestLot(t, 100)
	_, err := lot.Allocate(id.New(), qty(30), "alice")
	require.NoError(t, err)

	t.Run("down to counted value", func(t *testing.T) {
		m, err := lot.Adjust(qty(90), "bob", "cycle count")
		require.NoError(t, err)
		assert.Equal(t, qty(90), lot.CurrentStockKg)
		assert.Equal(t, qty(60), lot.AvailableKg)
		assert.Equal(t, MovementAdjustment, m.Type)
		assert.Equal(t, qty(-10), m.Quantity, "movement carries the signed delta")
		assert.Equal(t, "cycle count", m.Notes)
	})

	t.Run("below allocated is rejected", func(t *testing.T) {
		_, err := lot.Adjust(qty(29.9999), "bob", "cycle count")
		require.Error(t, err)
		assert.Equal(t, qty(90), lot.CurrentStockKg)
	})

	t.Run("exactly allocated is allowed", func(t *testing.T) {
		_, err := lot.Adjust(qty(30), "bob", "cycle count")
		require.NoError(t, err)
		assert.True(t, lot.AvailableKg.IsZero())
	})
}

func TestLot_Consume(t *testing.T) {
	lot := newTestLot(t, 100)
	orderID := id.New()
	_, err := lot.Allocate(orderID, qty(30), "alice")
	require.NoError(t, err)

	m, err := lot.Consume(orderID, qty(25), "alice", "issued to line 2")
	require.NoError(t, err)
	assert.Equal(t, qty(75), lot.CurrentStockKg)
	assert.Equal(t, qty(5), lot.AllocatedKg)
	assert.Equal(t, qty(70), lot.AvailableKg)
	assert.Equal(t, MovementOut, m.Type)

	// cannot consume beyond what is reserved
	_, err = lot.Consume(orderID, qty(10), "alice", "")
	require.Error(t, err)
}

func TestLot_Alerts(t *testing.T) {
	lot := newTestLot(t, 100)
	lot.ThresholdKg = qty(20)
	lot.MaxStockKg = qty(120)

	assert.False(t, lot.computeAlerts().LowStock)
	assert.False(t, lot.computeAlerts().Overstock)

	// falling to the threshold trips the low-stock alert
	_, err := lot.Adjust(qty(20), "bob", "count")
	require.NoError(t, err)
	assert.True(t, lot.Alerts.LowStock)

	_, err = lot.Adjust(qty(15), "bob", "count")
	require.NoError(t, err)
	assert.True(t, lot.Alerts.LowStock)

	// restocking past the ceiling trips overstock and clears low stock
	_, err = lot.Restock(qty(110), "bob", "")
	require.NoError(t, err)
	assert.False(t, lot.Alerts.LowStock)
	assert.True(t, lot.Alerts.Overstock)

	// expiry is never flagged: no expiry data is tracked
	assert.False(t, lot.Alerts.NearExpiry)
}

func TestLot_NeedsReorder(t *testing.T) {
	lot := newTestLot(t, 100)
	lot.ReorderPointKg = qty(25)

	assert.False(t, lot.NeedsReorder())
	_, err := lot.Adjust(qty(25), "bob", "count")
	require.NoError(t, err)
	assert.True(t, lot.NeedsReorder())
}

// Replaying the movement log must reproduce the lot's quantity state.
func TestLot_MovementLogReplay(t *testing.T) {
	lot := newTestLot(t, 0)
	orderID := id.New()

	var log []Movement
	record := func(m Movement, err error) {
		require.NoError(t, err)
		log = append(log, m)
	}

	record(lot.Restock(qty(100), "alice", ""))
	record(lot.Allocate(orderID, qty(40), "alice"))
	record(lot.Release(orderID, qty(10), "alice"))
	record(lot.Consume(orderID, qty(20), "alice", ""))
	record(lot.Adjust(qty(85), "bob", "count"))
	record(lot.Restock(qty(15), "alice", ""))

	var current, allocated types.Quantity
	for _, m := range log {
		switch m.Type {
		case MovementIn:
			current += m.Quantity
		case MovementOut:
			current -= m.Quantity
			allocated -= m.Quantity
		case MovementAllocated:
			allocated += m.Quantity
		case MovementReleased:
			allocated -= m.Quantity
		case MovementAdjustment:
			current += m.Quantity
		}
	}

	assert.Equal(t, lot.CurrentStockKg, current)
	assert.Equal(t, lot.AllocatedKg, allocated)
	assert.Equal(t, lot.CurrentStockKg-lot.AllocatedKg, lot.AvailableKg)
}

func TestLot_Validate(t *testing.T) {
	ctx := context.Background()

	lot := newTestLot(t, 100)
	require.NoError(t, lot.Validate(ctx))

	bad := newTestLot(t, 100)
	bad.RawMaterialID = id.Nil()
	require.Error(t, bad.Validate(ctx))

	bad = newTestLot(t, 100)
	bad.AllocatedKg = qty(150)
	require.Error(t, bad.Validate(ctx))
}
