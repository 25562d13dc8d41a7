package inventory

import (
	"context"

	"aurotex/internal/core/id"
	"aurotex/internal/domain"
)

// Repository persists lots and their movement log.
//
// Update is version-checked: it must fail with CONCURRENT_MODIFICATION when
// the stored version differs from the one on the passed lot, and bump the
// version on success. AppendMovement is insert-only; a movement row is never
// updated or deleted.
type Repository interface {
	Create(ctx context.Context, lot *Lot) error
	GetByID(ctx context.Context, lotID id.ID) (*Lot, error)
	GetByMaterial(ctx context.Context, rawMaterialID id.ID) (*Lot, error)
	Update(ctx context.Context, lot *Lot) error
	// Delete sets the deletion mark; the row and its movements stay in place.
	Delete(ctx context.Context, lotID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Lot], error)

	AppendMovement(ctx context.Context, m Movement) error
	GetMovements(ctx context.Context, lotID id.ID, limit int) ([]Movement, error)

	// ListLowStock returns lots whose low-stock alert is set.
	ListLowStock(ctx context.Context) ([]*Lot, error)
}
