package orders

import (
	"context"

	"aurotex/internal/core/id"
	"aurotex/internal/domain"
	"aurotex/internal/domain/status"
)

// Repository persists orders with their items, allocations and status history.
//
// Update is version-checked against the order header and rewrites the item
// lines; it must fail with CONCURRENT_MODIFICATION on a stale version.
// AppendStatusHistory is insert-only.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, orderID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Order], error)
	ListByClient(ctx context.Context, clientID id.ID, filter domain.ListFilter) (domain.ListResult[*Order], error)

	AppendStatusHistory(ctx context.Context, orderID id.ID, e status.HistoryEntry) error
	GetStatusHistory(ctx context.Context, orderID id.ID) ([]status.HistoryEntry, error)
}
