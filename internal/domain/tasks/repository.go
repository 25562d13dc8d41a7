package tasks

import (
	"context"

	"aurotex/internal/core/id"
	"aurotex/internal/domain"
	"aurotex/internal/domain/status"
)

// Repository persists tasks, their daily progress log and status history.
//
// Update is version-checked and must fail with CONCURRENT_MODIFICATION on a
// stale version. AppendProgress and AppendStatusHistory are insert-only.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, taskID id.ID) (*Task, error)
	GetByNumber(ctx context.Context, number string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Task], error)
	ListByOrder(ctx context.Context, orderID id.ID) ([]*Task, error)
	ListByAssignee(ctx context.Context, assigneeID id.ID, filter domain.ListFilter) (domain.ListResult[*Task], error)

	AppendProgress(ctx context.Context, p DailyProgress) error
	GetProgress(ctx context.Context, taskID id.ID) ([]DailyProgress, error)

	AppendStatusHistory(ctx context.Context, taskID id.ID, e status.HistoryEntry) error
	GetStatusHistory(ctx context.Context, taskID id.ID) ([]status.HistoryEntry, error)
}
