package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
	"aurotex/internal/domain/inventory"
)

func testLot(t *testing.T, stockKg, thresholdKg, reorderKg, maxKg float64) *inventory.Lot {
	t.Helper()
	lot := inventory.NewLot(id.New(), types.MustMoney("10"))
	lot.ThresholdKg = types.NewQuantityFromFloat64(thresholdKg)
	lot.ReorderPointKg = types.NewQuantityFromFloat64(reorderKg)
	lot.MaxStockKg = types.NewQuantityFromFloat64(maxKg)
	if stockKg > 0 {
		_, err := lot.Restock(types.NewQuantityFromFloat64(stockKg), "seed", "")
		require.NoError(t, err)
	}
	return lot
}

func ruleNames(rules []StockRule) []string {
	if len(rules) == 0 {
		return nil
	}
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

func TestRuleEngine_DefaultRules(t *testing.T) {
	engine, err := NewRuleEngine(DefaultStockRules())
	require.NoError(t, err)

	tests := []struct {
		name    string
		lot     *inventory.Lot
		matched []string
	}{
		{
			name:    "healthy stock matches nothing",
			lot:     testLot(t, 100, 20, 25, 500),
			matched: nil,
		},
		{
			name:    "at threshold",
			lot:     testLot(t, 20, 20, 25, 500),
			matched: []string{"low_stock", "reorder_point"},
		},
		{
			name:    "below half threshold is critical",
			lot:     testLot(t, 9, 20, 25, 500),
			matched: []string{"critical_stock", "low_stock", "reorder_point"},
		},
		{
			name:    "between threshold and reorder point",
			lot:     testLot(t, 23, 20, 25, 500),
			matched: []string{"reorder_point"},
		},
		{
			name:    "over the ceiling",
			lot:     testLot(t, 600, 20, 25, 500),
			matched: []string{"overstock"},
		},
		{
			name:    "zero bounds disable the rules",
			lot:     testLot(t, 0, 0, 0, 0),
			matched: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := engine.Evaluate(tt.lot)
			require.NoError(t, err)
			assert.Equal(t, tt.matched, ruleNames(matched))
		})
	}
}

func TestRuleEngine_CustomRule(t *testing.T) {
	engine, err := NewRuleEngine([]StockRule{
		{
			Name:       "reserved_majority",
			Expression: "current_stock_kg > 0.0 && allocated_kg / current_stock_kg > 0.8",
			Type:       TypeStockLow,
			Priority:   PriorityHigh,
		},
	})
	require.NoError(t, err)

	lot := testLot(t, 100, 0, 0, 0)
	_, err = lot.Allocate(id.New(), types.NewQuantityFromFloat64(90), "tester")
	require.NoError(t, err)

	matched, err := engine.Evaluate(lot)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "reserved_majority", matched[0].Name)
}

func TestRuleEngine_RejectsBadRules(t *testing.T) {
	_, err := NewRuleEngine([]StockRule{
		{Name: "syntax", Expression: "current_stock_kg <=", Type: TypeStockLow},
	})
	require.Error(t, err)

	_, err = NewRuleEngine([]StockRule{
		{Name: "unknown_var", Expression: "warehouse_temp > 30.0", Type: TypeStockLow},
	})
	require.Error(t, err)

	_, err = NewRuleEngine([]StockRule{
		{Name: "not_bool", Expression: "current_stock_kg + 1.0", Type: TypeStockLow},
	})
	require.Error(t, err)
}
