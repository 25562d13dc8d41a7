package orders

import (
	"github.com/shopspring/decimal"
)

// RecomputeTotals rebuilds every derived aggregate from the order's items.
// Pure: it mutates only the order it is given and touches nothing else, so
// applying it twice without item changes is a no-op. Every write path runs
// it before persisting; aggregates are never edited directly.
func RecomputeTotals(o *Order) {
	o.TotalItems = len(o.Items)
	o.TotalQuantity = 0
	o.TotalValue = decimal.Zero
	o.TotalThreadKg = 0
	o.TotalLaborHours = 0

	threadCost := decimal.Zero
	laborCost := decimal.Zero

	for i := range o.Items {
		item := &o.Items[i]
		item.TotalPrice = decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice)

		o.TotalQuantity += item.Quantity
		o.TotalValue = o.TotalValue.Add(item.TotalPrice)
		o.TotalLaborHours += item.EstimatedLaborHours
		laborCost = laborCost.Add(item.TotalWage)

		for _, a := range item.ThreadAllocations {
			o.TotalThreadKg += a.AllocatedKg
			threadCost = threadCost.Add(a.AllocatedKg.Decimal().Mul(a.CostPerKg))
		}
	}

	o.TotalCost = threadCost.Add(laborCost)
	o.EstimatedProfit = o.TotalValue.Sub(o.TotalCost)
}
