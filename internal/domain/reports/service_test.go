package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
)

// memReportRepo records the filter each query received so the tests can
// check the service's normalization without a database.
type memReportRepo struct {
	valuationFilter   InventoryValuationFilter
	financialFilter   OrderFinancialFilter
	performanceFilter ContractorPerformanceFilter

	valuation   *InventoryValuation
	financial   *OrderFinancialSummary
	performance *ContractorPerformance

	err error
}

func (r *memReportRepo) GetInventoryValuation(_ context.Context, filter InventoryValuationFilter) (*InventoryValuation, error) {
	r.valuationFilter = filter
	if r.err != nil {
		return nil, r.err
	}
	return r.valuation, nil
}

func (r *memReportRepo) GetOrderFinancialSummary(_ context.Context, filter OrderFinancialFilter) (*OrderFinancialSummary, error) {
	r.financialFilter = filter
	if r.err != nil {
		return nil, r.err
	}
	return r.financial, nil
}

func (r *memReportRepo) GetContractorPerformance(_ context.Context, filter ContractorPerformanceFilter) (*ContractorPerformance, error) {
	r.performanceFilter = filter
	if r.err != nil {
		return nil, r.err
	}
	return r.performance, nil
}

func TestReportService_ValuationClampsLimit(t *testing.T) {
	repo := &memReportRepo{valuation: &InventoryValuation{
		AsOfDate: time.Now(),
		Rows: []InventoryValuationRow{{
			RawMaterialID:  id.New(),
			CurrentStockKg: types.NewQuantityFromFloat64(120),
			TotalValue:     types.MustMoney("600"),
		}},
		TotalValue: types.MustMoney("600"),
		TotalCount: 1,
	}}
	svc := NewService(repo)

	report, err := svc.GetInventoryValuation(context.Background(), InventoryValuationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.valuationFilter.Limit)
	assert.Equal(t, int64(1), report.TotalCount)

	_, err = svc.GetInventoryValuation(context.Background(), InventoryValuationFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1000, repo.valuationFilter.Limit)

	_, err = svc.GetInventoryValuation(context.Background(), InventoryValuationFilter{Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, repo.valuationFilter.Limit)
}

func TestReportService_FinancialSummaryRequiresPeriod(t *testing.T) {
	now := time.Now()
	repo := &memReportRepo{financial: &OrderFinancialSummary{}}
	svc := NewService(repo)

	_, err := svc.GetOrderFinancialSummary(context.Background(), OrderFinancialFilter{})
	require.Error(t, err)

	_, err = svc.GetOrderFinancialSummary(context.Background(), OrderFinancialFilter{
		FromDate: now,
		ToDate:   now.AddDate(0, 0, -1),
	})
	require.Error(t, err)

	_, err = svc.GetOrderFinancialSummary(context.Background(), OrderFinancialFilter{
		FromDate: now.AddDate(0, 0, -7),
		ToDate:   now,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.financialFilter.Limit)
}

func TestReportService_ContractorPerformanceDefaultsWindow(t *testing.T) {
	repo := &memReportRepo{performance: &ContractorPerformance{}}
	svc := NewService(repo)

	before := time.Now()
	_, err := svc.GetContractorPerformance(context.Background(), ContractorPerformanceFilter{})
	require.NoError(t, err)

	got := repo.performanceFilter
	assert.False(t, got.ToDate.Before(before))
	assert.WithinDuration(t, got.ToDate.AddDate(0, 0, -30), got.FromDate, time.Second)

	// an explicit inverted window is still rejected
	_, err = svc.GetContractorPerformance(context.Background(), ContractorPerformanceFilter{
		FromDate: before,
		ToDate:   before.AddDate(0, 0, -1),
	})
	require.Error(t, err)
}

func TestReportService_WrapsRepositoryError(t *testing.T) {
	cause := errors.New("connection reset")
	svc := NewService(&memReportRepo{err: cause})

	_, err := svc.GetInventoryValuation(context.Background(), InventoryValuationFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}
