package reports

import (
	"context"
)

// Repository defines report data access. All queries are read-only.
type Repository interface {
	GetInventoryValuation(ctx context.Context, filter InventoryValuationFilter) (*InventoryValuation, error)
	GetOrderFinancialSummary(ctx context.Context, filter OrderFinancialFilter) (*OrderFinancialSummary, error)
	GetContractorPerformance(ctx context.Context, filter ContractorPerformanceFilter) (*ContractorPerformance, error)
}
