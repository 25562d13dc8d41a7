package dto

import (
	"time"

	"aurotex/internal/core/id"
	"aurotex/internal/domain/reports"
)

// InventoryValuationQuery filters the stock valuation report.
type InventoryValuationQuery struct {
	MaterialIDs []string `form:"materialId"`
	OnlyAlerts  bool     `form:"onlyAlerts"`
	Limit       int      `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset      int      `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to the domain filter.
func (q InventoryValuationQuery) ToFilter() (reports.InventoryValuationFilter, error) {
	filter := reports.InventoryValuationFilter{
		OnlyAlerts: q.OnlyAlerts,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	for _, raw := range q.MaterialIDs {
		materialID, err := id.Parse(raw)
		if err != nil {
			return reports.InventoryValuationFilter{}, err
		}
		filter.MaterialIDs = append(filter.MaterialIDs, materialID)
	}
	return filter, nil
}

// OrderFinancialQuery filters the order financial summary.
type OrderFinancialQuery struct {
	FromDate time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate   time.Time `form:"toDate" time_format:"2006-01-02"`
	ClientID string    `form:"clientId"`
	Statuses []string  `form:"status"`
	Limit    int       `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset   int       `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to the domain filter.
func (q OrderFinancialQuery) ToFilter() (reports.OrderFinancialFilter, error) {
	filter := reports.OrderFinancialFilter{
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Statuses: q.Statuses,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.ClientID != "" {
		clientID, err := id.Parse(q.ClientID)
		if err != nil {
			return reports.OrderFinancialFilter{}, err
		}
		filter.ClientID = &clientID
	}
	return filter, nil
}

// ContractorPerformanceQuery filters the contractor report.
type ContractorPerformanceQuery struct {
	FromDate time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate   time.Time `form:"toDate" time_format:"2006-01-02"`
	Limit    int       `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset   int       `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to the domain filter.
func (q ContractorPerformanceQuery) ToFilter() reports.ContractorPerformanceFilter {
	return reports.ContractorPerformanceFilter{
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
}
