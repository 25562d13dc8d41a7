package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aurotex/internal/core/id"
	"aurotex/internal/domain"
	"aurotex/internal/domain/status"
	"aurotex/internal/domain/tasks"
	"aurotex/internal/infrastructure/storage/postgres"
)

const (
	tasksTable             = "doc_tasks"
	taskProgressTable      = "doc_task_progress"
	taskStatusHistoryTable = "doc_task_status_history"
)

// TaskRepo implements tasks.Repository. The daily progress log and status
// history are append-only.
type TaskRepo struct {
	*BaseDocumentRepo[*tasks.Task]
	audit *postgres.AuditTrail
}

// NewTaskRepo creates a new task repository.
func NewTaskRepo(txm *postgres.TxManager, audit *postgres.AuditTrail) *TaskRepo {
	return &TaskRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			tasksTable,
			postgres.ExtractDBColumns[tasks.Task](),
			func() *tasks.Task { return &tasks.Task{} },
		),
		audit: audit,
	}
}

// Create inserts the task.
func (r *TaskRepo) Create(ctx context.Context, t *tasks.Task) error {
	if err := r.BaseDocumentRepo.Create(ctx, t); err != nil {
		return err
	}
	return r.audit.LogSnapshot(ctx, tasksTable, t.ID, postgres.AuditActionCreate, t)
}

// Update rewrites the task with optimistic locking.
func (r *TaskRepo) Update(ctx context.Context, t *tasks.Task) error {
	if err := r.BaseDocumentRepo.Update(ctx, t); err != nil {
		return err
	}
	return r.audit.LogSnapshot(ctx, tasksTable, t.ID, postgres.AuditActionUpdate, t)
}

// ListByOrder retrieves every task cut from one order.
func (r *TaskRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]*tasks.Task, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"order_id": orderID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*tasks.Task
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by order: %w", err)
	}

	return items, nil
}

// ListByAssignee retrieves tasks assigned to one contractor or worker.
func (r *TaskRepo) ListByAssignee(ctx context.Context, assigneeID id.ID, filter domain.ListFilter) (domain.ListResult[*tasks.Task], error) {
	q := r.baseSelect().
		Where(squirrel.Or{
			squirrel.Eq{"contractor_id": assigneeID},
			squirrel.Eq{"worker_id": assigneeID},
		}).
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}

	return r.ListQuery(ctx, q, filter)
}

// AppendProgress records one daily progress report.
func (r *TaskRepo) AppendProgress(ctx context.Context, p tasks.DailyProgress) error {
	q := r.Builder().
		Insert(taskProgressTable).
		Columns("entry_id", "task_id", "date", "pieces_completed", "hours_worked", "worker_ids", "notes", "recorded_by").
		Values(p.EntryID, p.TaskID, p.Date, p.PiecesCompleted, p.HoursWorked, p.WorkerIDs, p.Notes, p.RecordedBy)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert progress: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}

	return r.audit.LogSnapshot(ctx, tasksTable, p.TaskID, postgres.AuditActionProgress, p)
}

// GetProgress returns progress reports oldest first.
func (r *TaskRepo) GetProgress(ctx context.Context, taskID id.ID) ([]tasks.DailyProgress, error) {
	q := r.Builder().
		Select("entry_id", "task_id", "date", "pieces_completed", "hours_worked", "worker_ids", "notes", "recorded_by").
		From(taskProgressTable).
		Where(squirrel.Eq{"task_id": taskID}).
		OrderBy("date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build progress query: %w", err)
	}

	var entries []tasks.DailyProgress
	if err := pgxscan.Select(ctx, r.querier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	return entries, nil
}

// AppendStatusHistory records one accepted status change.
func (r *TaskRepo) AppendStatusHistory(ctx context.Context, taskID id.ID, e status.HistoryEntry) error {
	q := r.Builder().
		Insert(taskStatusHistoryTable).
		Columns("task_id", "status", "timestamp", "changed_by", "notes").
		Values(taskID, e.Status, e.Timestamp, e.ChangedBy, e.Notes)

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
func (r *TaskRepo) GetStatusHistory(ctx context.Context, taskID id.ID) ([]status.HistoryEntry, error) {
	q := r.Builder().
		Select("status", "timestamp", "changed_by", "notes").
		From(taskStatusHistoryTable).
		Where(squirrel.Eq{"task_id": taskID}).
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
