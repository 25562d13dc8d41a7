// Package notification_repo provides the PostgreSQL notification inbox.
package notification_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/domain"
	"aurotex/internal/domain/notifications"
	"aurotex/internal/infrastructure/storage/postgres"
)

const notificationsTable = "sys_notifications"

// NotificationRepo implements notifications.Repository.
type NotificationRepo struct {
	txm *postgres.TxManager
}

// NewNotificationRepo creates a new notification repository.
func NewNotificationRepo(txm *postgres.TxManager) *NotificationRepo {
	return &NotificationRepo{txm: txm}
}

func (r *NotificationRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var notificationCols = postgres.ExtractDBColumns[notifications.Notification]()

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *notifications.Notification) error {
	data := postgres.StructToMap(n)

	filtered := make(map[string]any, len(notificationCols))
	for _, col := range notificationCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Insert(notificationsTable).
		SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification.
func (r *NotificationRepo) GetByID(ctx context.Context, notificationID id.ID) (*notifications.Notification, error) {
	n := &notifications.Notification{}

	q := r.builder().
		Select(notificationCols...).
		From(notificationsTable).
		Where(squirrel.Eq{"id": notificationID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), n, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(notificationsTable, notificationID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return n, nil
}

// recipientCond matches notifications targeted at the user directly or at
// their role.
func recipientCond(userID string, role actor.Role) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"recipient_user_id": userID},
		squirrel.And{
			squirrel.Eq{"recipient_user_id": ""},
			squirrel.Eq{"recipient_role": role},
		},
	}
}

// ListForUser returns notifications for the user, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, role actor.Role, filter domain.ListFilter) (domain.ListResult[*notifications.Notification], error) {
	result := domain.ListResult[*notifications.Notification]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(notificationCols...).
		From(notificationsTable).
		Where(recipientCond(userID, role))

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list notifications: %w", err)
	}

	return result, nil
}

// CountUnread returns how many notifications the user has not read.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string, role actor.Role) (int64, error) {
	q := r.builder().
		Select("COUNT(*)").
		From(notificationsTable).
		Where(recipientCond(userID, role)).
		Where(squirrel.Eq{"read": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}

	return count, nil
}

// MarkRead marks one notification as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID id.ID) error {
	q := r.builder().
		Update(notificationsTable).
		Set("read", true).
		Set("read_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": notificationID}).
		Where(squirrel.Eq{"read": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build mark read: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string, role actor.Role) error {
	q := r.builder().
		Update(notificationsTable).
		Set("read", true).
		Set("read_at", squirrel.Expr("NOW()")).
		Where(recipientCond(userID, role)).
		Where(squirrel.Eq{"read": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build mark all read: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	return nil
}
