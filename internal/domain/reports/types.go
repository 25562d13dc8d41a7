// Package reports provides read-only management reports over the ledger,
// orders and tasks.
package reports

import (
	"time"

	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
)

// --- Inventory valuation ---

// InventoryValuationFilter defines the valuation report filter.
type InventoryValuationFilter struct {
	MaterialIDs []id.ID
	OnlyAlerts  bool

	Limit  int
	Offset int
}

// InventoryValuationRow is one material's stock position.
type InventoryValuationRow struct {
	RawMaterialID  id.ID          `db:"raw_material_id" json:"rawMaterialId"`
	MaterialCode   string         `db:"material_code" json:"materialCode"`
	MaterialName   string         `db:"material_name" json:"materialName"`
	CurrentStockKg types.Quantity `db:"current_stock_kg" json:"currentStockKg"`
	AllocatedKg    types.Quantity `db:"allocated_kg" json:"allocatedKg"`
	AvailableKg    types.Quantity `db:"available_kg" json:"availableKg"`
	CostPerKg      types.Money    `db:"cost_per_kg" json:"costPerKg"`
	TotalValue     types.Money    `db:"total_value" json:"totalValue"`
	LowStock       bool           `db:"low_stock" json:"lowStock"`
}

// InventoryValuation is the full valuation report.
type InventoryValuation struct {
	AsOfDate   time.Time               `json:"asOfDate"`
	Rows       []InventoryValuationRow `json:"rows"`
	TotalValue types.Money             `json:"totalValue"`
	TotalCount int64                   `json:"totalCount"`
}

// --- Order financials ---

// OrderFinancialFilter defines the order financial summary filter.
type OrderFinancialFilter struct {
	FromDate time.Time
	ToDate   time.Time
	ClientID *id.ID
	Statuses []string

	Limit  int
	Offset int
}

// OrderFinancialRow summarizes one order.
type OrderFinancialRow struct {
	OrderID         id.ID       `db:"order_id" json:"orderId"`
	OrderNumber     string      `db:"order_number" json:"orderNumber"`
	ClientName      string      `db:"client_name" json:"clientName"`
	Status          string      `db:"status" json:"status"`
	OrderDate       time.Time   `db:"order_date" json:"orderDate"`
	TotalQuantity   int64       `db:"total_quantity" json:"totalQuantity"`
	TotalValue      types.Money `db:"total_value" json:"totalValue"`
	TotalCost       types.Money `db:"total_cost" json:"totalCost"`
	EstimatedProfit types.Money `db:"estimated_profit" json:"estimatedProfit"`
}

// OrderFinancialSummary is the order report with period totals.
type OrderFinancialSummary struct {
	FromDate    time.Time           `json:"fromDate"`
	ToDate      time.Time           `json:"toDate"`
	Rows        []OrderFinancialRow `json:"rows"`
	TotalValue  types.Money         `json:"totalValue"`
	TotalCost   types.Money         `json:"totalCost"`
	TotalProfit types.Money         `json:"totalProfit"`
	TotalCount  int64               `json:"totalCount"`
}

// --- Contractor performance ---

// ContractorPerformanceFilter defines the contractor report filter.
type ContractorPerformanceFilter struct {
	FromDate time.Time
	ToDate   time.Time

	Limit  int
	Offset int
}

// ContractorPerformanceRow summarizes one contractor's completed work.
type ContractorPerformanceRow struct {
	ContractorID   id.ID          `db:"contractor_id" json:"contractorId"`
	ContractorName string         `db:"contractor_name" json:"contractorName"`
	TasksTotal     int64          `db:"tasks_total" json:"tasksTotal"`
	TasksCompleted int64          `db:"tasks_completed" json:"tasksCompleted"`
	TasksRejected  int64          `db:"tasks_rejected" json:"tasksRejected"`
	PiecesDone     int64          `db:"pieces_done" json:"piecesDone"`
	HoursLogged    types.Quantity `db:"hours_logged" json:"hoursLogged"`
	WagesEarned    types.Money    `db:"wages_earned" json:"wagesEarned"`
}

// ContractorPerformance is the contractor report.
type ContractorPerformance struct {
	FromDate   time.Time                  `json:"fromDate"`
	ToDate     time.Time                  `json:"toDate"`
	Rows       []ContractorPerformanceRow `json:"rows"`
	TotalCount int64                      `json:"totalCount"`
}
