package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func kg(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func TestRecomputeTotals(t *testing.T) {
	o := NewOrder(id.New())
	o.Items = []OrderItem{
		{LineID: id.New(), ProductID: id.New(), Quantity: 2, UnitPrice: money("100")},
		{LineID: id.New(), ProductID: id.New(), Quantity: 3, UnitPrice: money("50")},
	}

	RecomputeTotals(o)

	assert.Equal(t, 2, o.TotalItems)
	assert.Equal(t, int64(5), o.TotalQuantity)
	assert.True(t, o.Items[0].TotalPrice.Equal(money("200")), "got %s", o.Items[0].TotalPrice)
	assert.True(t, o.Items[1].TotalPrice.Equal(money("150")), "got %s", o.Items[1].TotalPrice)
	assert.True(t, o.TotalValue.Equal(money("350")), "got %s", o.TotalValue)
}

func TestRecomputeTotals_CostAndProfit(t *testing.T) {
	o := NewOrder(id.New())
	o.Items = []OrderItem{
		{
			LineID:              id.New(),
			ProductID:           id.New(),
			Quantity:            10,
			UnitPrice:           money("40"),
			EstimatedLaborHours: kg(8),
			TotalWage:           money("120"),
			ThreadAllocations: []ThreadAllocation{
				{RawMaterialID: id.New(), LotID: id.New(), AllocatedKg: kg(5), CostPerKg: money("12.50")},
				{RawMaterialID: id.New(), LotID: id.New(), AllocatedKg: kg(2.5), CostPerKg: money("8")},
			},
		},
	}

	RecomputeTotals(o)

	assert.Equal(t, kg(7.5), o.TotalThreadKg)
	assert.Equal(t, kg(8), o.TotalLaborHours)

	// thread cost 5x12.50 + 2.5x8 = 82.50, labor 120 -> cost 202.50
	assert.True(t, o.TotalCost.Equal(money("202.50")), "got %s", o.TotalCost)
	// value 400 - cost 202.50
	assert.True(t, o.EstimatedProfit.Equal(money("197.50")), "got %s", o.EstimatedProfit)
}

func TestRecomputeTotals_Idempotent(t *testing.T) {
	o := NewOrder(id.New())
	o.Items = []OrderItem{
		{LineID: id.New(), ProductID: id.New(), Quantity: 7, UnitPrice: money("19.99"), TotalWage: money("30")},
	}

	RecomputeTotals(o)
	first := *o
	RecomputeTotals(o)

	assert.Equal(t, first.TotalItems, o.TotalItems)
	assert.Equal(t, first.TotalQuantity, o.TotalQuantity)
	assert.True(t, first.TotalValue.Equal(o.TotalValue))
	assert.True(t, first.TotalCost.Equal(o.TotalCost))
	assert.True(t, first.EstimatedProfit.Equal(o.EstimatedProfit))
}

func TestRecomputeTotals_OverwritesStaleAggregates(t *testing.T) {
	o := NewOrder(id.New())
	o.TotalValue = money("9999")
	o.TotalItems = 42
	o.TotalQuantity = 42

	RecomputeTotals(o)

	assert.Equal(t, 0, o.TotalItems)
	assert.Equal(t, int64(0), o.TotalQuantity)
	assert.True(t, o.TotalValue.IsZero())
	assert.True(t, o.EstimatedProfit.IsZero())
}
