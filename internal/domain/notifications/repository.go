package notifications

import (
	"context"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/id"
	"aurotex/internal/domain"
)

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, notificationID id.ID) (*Notification, error)

	// ListForUser returns notifications targeted at the user directly or
	// at their role, newest first.
	ListForUser(ctx context.Context, userID string, role actor.Role, filter domain.ListFilter) (domain.ListResult[*Notification], error)

	CountUnread(ctx context.Context, userID string, role actor.Role) (int64, error)

	MarkRead(ctx context.Context, notificationID id.ID) error
	MarkAllRead(ctx context.Context, userID string, role actor.Role) error
}
