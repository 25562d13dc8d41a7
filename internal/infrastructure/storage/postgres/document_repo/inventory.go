package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/domain"
	"aurotex/internal/domain/inventory"
	"aurotex/internal/infrastructure/storage/postgres"
)

const (
	lotsTable      = "inv_lots"
	movementsTable = "inv_movements"
)

// LotRepo implements inventory.Repository. The movement log is append-only;
// a movement row is never updated or deleted. Alert flags are derived in the
// domain and persisted so ListLowStock stays a plain indexed query.
type LotRepo struct {
	*BaseDocumentRepo[*inventory.Lot]
	audit *postgres.AuditTrail
}

// NewLotRepo creates a new lot repository.
func NewLotRepo(txm *postgres.TxManager, audit *postgres.AuditTrail) *LotRepo {
	return &LotRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			lotsTable,
			postgres.ExtractDBColumns[inventory.Lot](),
			func() *inventory.Lot { return &inventory.Lot{} },
		),
		audit: audit,
	}
}

// Create inserts the lot.
func (r *LotRepo) Create(ctx context.Context, lot *inventory.Lot) error {
	if err := r.BaseDocumentRepo.Create(ctx, lot); err != nil {
		return err
	}
	return r.audit.LogSnapshot(ctx, lotsTable, lot.ID, postgres.AuditActionCreate, lot)
}

// Update rewrites the lot with optimistic locking.
func (r *LotRepo) Update(ctx context.Context, lot *inventory.Lot) error {
	if err := r.BaseDocumentRepo.Update(ctx, lot); err != nil {
		return err
	}
	return r.audit.LogSnapshot(ctx, lotsTable, lot.ID, postgres.AuditActionUpdate, lot)
}

// GetByMaterial retrieves the lot tracking one raw material.
func (r *LotRepo) GetByMaterial(ctx context.Context, rawMaterialID id.ID) (*inventory.Lot, error) {
	lot := &inventory.Lot{}

	q := r.baseSelect().
		Where(squirrel.Eq{"raw_material_id": rawMaterialID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), lot, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(lotsTable, rawMaterialID.String())
		}
		return nil, fmt.Errorf("get by material: %w", err)
	}

	return lot, nil
}

// List retrieves lots. Search matches the storage location.
func (r *LotRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*inventory.Lot], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"location": "%" + filter.Search + "%"})
	}

	if filter.OrderBy == "" {
		filter.OrderBy = "-updated_at"
	}

	return r.ListQuery(ctx, q, filter)
}

// AppendMovement records one stock movement. Insert-only.
func (r *LotRepo) AppendMovement(ctx context.Context, m inventory.Movement) error {
	q := r.Builder().
		Insert(movementsTable).
		Columns("line_id", "lot_id", "date", "type", "quantity", "order_id", "notes", "performed_by").
		Values(m.LineID, m.LotID, m.Date, m.Type, m.Quantity, m.OrderID, m.Notes, m.PerformedBy)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return r.audit.LogSnapshot(ctx, lotsTable, m.LotID, postgres.AuditActionMovement, m)
}

// GetMovements returns the newest movements for a lot, most recent first.
func (r *LotRepo) GetMovements(ctx context.Context, lotID id.ID, limit int) ([]inventory.Movement, error) {
	q := r.Builder().
		Select("line_id", "lot_id", "date", "type", "quantity", "order_id", "notes", "performed_by").
		From(movementsTable).
		Where(squirrel.Eq{"lot_id": lotID}).
		OrderBy("date DESC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements query: %w", err)
	}

	var movements []inventory.Movement
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("get movements: %w", err)
	}

	return movements, nil
}

// ListLowStock returns lots whose low-stock alert is set.
func (r *LotRepo) ListLowStock(ctx context.Context) ([]*inventory.Lot, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"alert_low_stock": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("current_stock_kg")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []*inventory.Lot
	if err := pgxscan.Select(ctx, r.querier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	return lots, nil
}
