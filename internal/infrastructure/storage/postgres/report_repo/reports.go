// Package report_repo provides PostgreSQL implementations for report queries.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aurotex/internal/domain/reports"
	"aurotex/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository. All queries are read-only
// aggregates over the lot, order and task tables.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetInventoryValuation reports each material's stock position and value.
func (r *ReportRepo) GetInventoryValuation(ctx context.Context, filter reports.InventoryValuationFilter) (*reports.InventoryValuation, error) {
	q := r.builder.
		Select(
			"l.raw_material_id",
			"m.code AS material_code",
			"m.name AS material_name",
			"l.current_stock_kg",
			"l.allocated_kg",
			"l.available_kg",
			"l.cost_per_kg",
			"l.total_value",
			"l.alert_low_stock AS low_stock",
		).
		From("inv_lots l").
		Join("cat_raw_materials m ON m.id = l.raw_material_id").
		Where(squirrel.Eq{"l.deletion_mark": false})

	if len(filter.MaterialIDs) > 0 {
		q = q.Where(squirrel.Eq{"l.raw_material_id": filter.MaterialIDs})
	}
	if filter.OnlyAlerts {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"l.alert_low_stock": true},
			squirrel.Eq{"l.alert_overstock": true},
		})
	}

	report := &reports.InventoryValuation{AsOfDate: time.Now().UTC()}

	if err := r.countInto(ctx, q, &report.TotalCount); err != nil {
		return nil, err
	}

	// Grand total over the filtered set, not just the page
	totalQ := r.builder.
		Select("COALESCE(SUM(sub.total_value), 0)").
		FromSelect(q, "sub")
	totalSQL, totalArgs, err := totalQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build total query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, totalSQL, totalArgs...).Scan(&report.TotalValue); err != nil {
		return nil, fmt.Errorf("sum total value: %w", err)
	}

	q = q.OrderBy("m.name")
	q = paginate(q, filter.Limit, filter.Offset)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("inventory valuation: %w", err)
	}

	return report, nil
}

// GetOrderFinancialSummary reports per-order value, cost and profit for a period.
func (r *ReportRepo) GetOrderFinancialSummary(ctx context.Context, filter reports.OrderFinancialFilter) (*reports.OrderFinancialSummary, error) {
	q := r.builder.
		Select(
			"o.id AS order_id",
			"o.number AS order_number",
			"c.name AS client_name",
			"o.status",
			"o.date AS order_date",
			"o.total_quantity",
			"o.total_value",
			"o.total_cost",
			"o.estimated_profit",
		).
		From("doc_orders o").
		Join("cat_clients c ON c.id = o.client_id").
		Where(squirrel.Eq{"o.deletion_mark": false}).
		Where(squirrel.GtOrEq{"o.date": filter.FromDate}).
		Where(squirrel.LtOrEq{"o.date": filter.ToDate})

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"o.client_id": *filter.ClientID})
	}
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"o.status": filter.Statuses})
	}

	report := &reports.OrderFinancialSummary{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}

	if err := r.countInto(ctx, q, &report.TotalCount); err != nil {
		return nil, err
	}

	totalsQ := r.builder.
		Select(
			"COALESCE(SUM(sub.total_value), 0)",
			"COALESCE(SUM(sub.total_cost), 0)",
			"COALESCE(SUM(sub.estimated_profit), 0)",
		).
		FromSelect(q, "sub")
	totalsSQL, totalsArgs, err := totalsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build totals query: %w", err)
	}
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, totalsSQL, totalsArgs...).
		Scan(&report.TotalValue, &report.TotalCost, &report.TotalProfit)
	if err != nil {
		return nil, fmt.Errorf("sum order totals: %w", err)
	}

	q = q.OrderBy("o.date DESC")
	q = paginate(q, filter.Limit, filter.Offset)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("order financial summary: %w", err)
	}

	return report, nil
}

// GetContractorPerformance reports task throughput per contractor for a period.
func (r *ReportRepo) GetContractorPerformance(ctx context.Context, filter reports.ContractorPerformanceFilter) (*reports.ContractorPerformance, error) {
	q := r.builder.
		Select(
			"c.id AS contractor_id",
			"c.name AS contractor_name",
			"COUNT(t.id) AS tasks_total",
			"COUNT(t.id) FILTER (WHERE t.status = 'COMPLETED') AS tasks_completed",
			"COUNT(t.id) FILTER (WHERE t.status = 'REJECTED') AS tasks_rejected",
			"COALESCE(SUM(t.pieces_completed), 0) AS pieces_done",
			"COALESCE(SUM(t.hours_logged), 0) AS hours_logged",
			"COALESCE(SUM(t.total_wage) FILTER (WHERE t.status = 'COMPLETED'), 0) AS wages_earned",
		).
		From("cat_contractors c").
		Join("doc_tasks t ON t.contractor_id = c.id").
		Where(squirrel.Eq{"t.deletion_mark": false}).
		Where(squirrel.GtOrEq{"t.created_at": filter.FromDate}).
		Where(squirrel.LtOrEq{"t.created_at": filter.ToDate}).
		GroupBy("c.id", "c.name")

	report := &reports.ContractorPerformance{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}

	if err := r.countInto(ctx, q, &report.TotalCount); err != nil {
		return nil, err
	}

	q = q.OrderBy("wages_earned DESC")
	q = paginate(q, filter.Limit, filter.Offset)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("contractor performance: %w", err)
	}

	return report, nil
}

func (r *ReportRepo) countInto(ctx context.Context, q squirrel.SelectBuilder, dest *int64) error {
	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return fmt.Errorf("build count query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(dest); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	return nil
}

func paginate(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
