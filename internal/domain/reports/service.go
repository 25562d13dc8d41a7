package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides report generation operations. Reports run in read-only
// transactions at the HTTP layer; the service only normalizes filters.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetInventoryValuation values the current stock position.
func (s *Service) GetInventoryValuation(ctx context.Context, filter InventoryValuationFilter) (*InventoryValuation, error) {
	clampLimit(&filter.Limit, 100, 1000)

	report, err := s.repo.GetInventoryValuation(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get inventory valuation: %w", err)
	}
	return report, nil
}

// GetOrderFinancialSummary summarizes order value, cost and profit for
// a period.
func (s *Service) GetOrderFinancialSummary(ctx context.Context, filter OrderFinancialFilter) (*OrderFinancialSummary, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}
	clampLimit(&filter.Limit, 100, 1000)

	report, err := s.repo.GetOrderFinancialSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get order financial summary: %w", err)
	}
	return report, nil
}

// GetContractorPerformance summarizes completed work and wages earned
// per contractor for a period. Defaults to the last 30 days.
func (s *Service) GetContractorPerformance(ctx context.Context, filter ContractorPerformanceFilter) (*ContractorPerformance, error) {
	if filter.ToDate.IsZero() {
		filter.ToDate = time.Now()
	}
	if filter.FromDate.IsZero() {
		filter.FromDate = filter.ToDate.AddDate(0, 0, -30)
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}
	clampLimit(&filter.Limit, 100, 1000)

	report, err := s.repo.GetContractorPerformance(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get contractor performance: %w", err)
	}
	return report, nil
}

func clampLimit(limit *int, def, max int) {
	if *limit <= 0 {
		*limit = def
	}
	if *limit > max {
		*limit = max
	}
}
