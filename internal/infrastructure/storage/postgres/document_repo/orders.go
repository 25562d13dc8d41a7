package document_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aurotex/internal/core/id"
	"aurotex/internal/domain"
	"aurotex/internal/domain/orders"
	"aurotex/internal/domain/status"
	"aurotex/internal/infrastructure/storage/postgres"
)

const (
	ordersTable             = "doc_orders"
	orderItemsTable         = "doc_order_items"
	orderStatusHistoryTable = "doc_order_status_history"
)

// OrderRepo implements orders.Repository. Items are rewritten wholesale on
// every update; thread allocations ride along as a JSONB column on the item
// row. Status history is append-only.
type OrderRepo struct {
	*BaseDocumentRepo[*orders.Order]
	audit *postgres.AuditTrail
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txm *postgres.TxManager, audit *postgres.AuditTrail) *OrderRepo {
	return &OrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			ordersTable,
			postgres.ExtractDBColumns[orders.Order](),
			func() *orders.Order { return &orders.Order{} },
		),
		audit: audit,
	}
}

// Create inserts the order with its items.
func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	if err := r.BaseDocumentRepo.Create(ctx, o); err != nil {
		return err
	}
	if err := r.saveItems(ctx, o.ID, o.Items); err != nil {
		return err
	}
	return r.audit.LogSnapshot(ctx, ordersTable, o.ID, postgres.AuditActionCreate, o)
}

// Update rewrites the order header and items with optimistic locking.
func (r *OrderRepo) Update(ctx context.Context, o *orders.Order) error {
	if err := r.BaseDocumentRepo.Update(ctx, o); err != nil {
		return err
	}
	if err := r.saveItems(ctx, o.ID, o.Items); err != nil {
		return err
	}
	return r.audit.LogSnapshot(ctx, ordersTable, o.ID, postgres.AuditActionUpdate, o)
}

// GetByID retrieves the order with its items.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	o, err := r.BaseDocumentRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.getItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByNumber retrieves the order with its items.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*orders.Order, error) {
	o, err := r.BaseDocumentRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.getItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// List retrieves orders with items loaded.
func (r *OrderRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*orders.Order], error) {
	result, err := r.BaseDocumentRepo.List(ctx, filter)
	if err != nil {
		return result, err
	}
	return result, r.loadItems(ctx, result.Items)
}

// ListByClient retrieves a client's orders with items loaded.
func (r *OrderRepo) ListByClient(ctx context.Context, clientID id.ID, filter domain.ListFilter) (domain.ListResult[*orders.Order], error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"client_id": clientID}).
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}

	result, err := r.ListQuery(ctx, q, filter)
	if err != nil {
		return result, err
	}
	return result, r.loadItems(ctx, result.Items)
}

// AppendStatusHistory records one accepted status change.
func (r *OrderRepo) AppendStatusHistory(ctx context.Context, orderID id.ID, e status.HistoryEntry) error {
	q := r.Builder().
		Insert(orderStatusHistoryTable).
		Columns("order_id", "status", "timestamp", "changed_by", "notes").
		Values(orderID, e.Status, e.Timestamp, e.ChangedBy, e.Notes)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert history: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}

	return nil
}

// GetStatusHistory returns status changes oldest first.
func (r *OrderRepo) GetStatusHistory(ctx context.Context, orderID id.ID) ([]status.HistoryEntry, error) {
	q := r.Builder().
		Select("status", "timestamp", "changed_by", "notes").
		From(orderStatusHistoryTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("timestamp")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var entries []status.HistoryEntry
	if err := pgxscan.Select(ctx, r.querier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("get status history: %w", err)
	}

	return entries, nil
}

// orderItemRow carries the JSONB allocations column next to the item fields.
type orderItemRow struct {
	orders.OrderItem
	Allocations []byte `db:"thread_allocations"`
}

func (r *OrderRepo) getItems(ctx context.Context, orderID id.ID) ([]orders.OrderItem, error) {
	items, err := r.itemsFor(ctx, []id.ID{orderID})
	if err != nil {
		return nil, err
	}
	return items[orderID], nil
}

func (r *OrderRepo) loadItems(ctx context.Context, os []*orders.Order) error {
	if len(os) == 0 {
		return nil
	}
	ids := make([]id.ID, 0, len(os))
	for _, o := range os {
		ids = append(ids, o.ID)
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, o := range os {
		o.Items = items[o.ID]
	}
	return nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderIDs []id.ID) (map[id.ID][]orders.OrderItem, error) {
	q := r.Builder().
		Select(
			"order_id", "line_id", "product_id", "size", "color",
			"quantity", "unit_price", "total_price", "thread_allocations",
			"estimated_labor_hours", "total_wage", "status",
		).
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var rows []struct {
		OrderID id.ID `db:"order_id"`
		orderItemRow
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	byOrder := make(map[id.ID][]orders.OrderItem, len(orderIDs))
	for _, row := range rows {
		item := row.OrderItem
		if len(row.Allocations) > 0 {
			if err := json.Unmarshal(row.Allocations, &item.ThreadAllocations); err != nil {
				return nil, fmt.Errorf("unmarshal allocations: %w", err)
			}
		}
		byOrder[row.OrderID] = append(byOrder[row.OrderID], item)
	}

	return byOrder, nil
}

func (r *OrderRepo) saveItems(ctx context.Context, orderID id.ID, items []orders.OrderItem) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + orderItemsTable + " WHERE order_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, orderID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(orderItemsTable).
		Columns(
			"line_id", "order_id", "line_no", "product_id", "size", "color",
			"quantity", "unit_price", "total_price", "thread_allocations",
			"estimated_labor_hours", "total_wage", "status",
		)

	for i, item := range items {
		allocations, err := json.Marshal(item.ThreadAllocations)
		if err != nil {
			return fmt.Errorf("marshal allocations: %w", err)
		}
		q = q.Values(
			item.LineID, orderID, i+1, item.ProductID, item.Size, item.Color,
			item.Quantity, item.UnitPrice, item.TotalPrice, allocations,
			item.EstimatedLaborHours, item.TotalWage, item.Status,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}
