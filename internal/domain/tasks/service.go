package tasks

import (
	"context"
	"errors"
	"time"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/tx"
	"aurotex/internal/core/types"
	"aurotex/internal/domain"
	"aurotex/internal/domain/status"
	"aurotex/pkg/logger"
	"aurotex/pkg/numerator"
)

const maxCASRetries = 3

// Numberer issues sequential document numbers.
type Numberer interface {
	GetNextNumber(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error)
}

// Notifier receives task lifecycle events. Best-effort, failures are logged.
type Notifier interface {
	NotifyTaskAssigned(ctx context.Context, t *Task) error
	NotifyTaskDecided(ctx context.Context, t *Task, approved bool) error
	NotifyTaskCompleted(ctx context.Context, t *Task) error
}

// Service owns the task lifecycle: creation pending approval, the
// approve/reject decision, progress reporting and completion.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numbers   Numberer
	notifier  Notifier
	machine   *status.Machine
}

func NewService(repo Repository, txManager tx.Manager, numbers Numberer, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		numbers:   numbers,
		notifier:  notifier,
		machine:   status.Tasks(),
	}
}

// Create persists a new task awaiting approval.
func (s *Service) Create(ctx context.Context, t *Task) (*Task, error) {
	if t == nil {
		return nil, apperror.NewValidation("task is required")
	}
	t.Status = status.TaskPendingApproval
	RecomputeWage(t)
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.GetNextNumber(ctx, numerator.TaskConfig(), nil, time.Now())
		if err != nil {
			return err
		}
		t.Number = number

		if err := s.repo.Create(ctx, t); err != nil {
			return err
		}
		entry := status.NewHistoryEntry(t.Status, actor.UserID(ctx), "task created")
		return s.repo.AppendStatusHistory(ctx, t.ID, entry)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "task created",
		"task_id", t.ID.String(),
		"number", t.Number)

	if s.notifier != nil {
		if err := s.notifier.NotifyTaskAssigned(ctx, t); err != nil {
			logger.Warn(ctx, "task assignment notification failed",
				"task_id", t.ID.String(), "error", err)
		}
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	return s.repo.GetByID(ctx, taskID)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Task, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Task], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ListByOrder(ctx context.Context, orderID id.ID) ([]*Task, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *Service) ListByAssignee(ctx context.Context, assigneeID id.ID, filter domain.ListFilter) (domain.ListResult[*Task], error) {
	return s.repo.ListByAssignee(ctx, assigneeID, filter)
}

// Approve moves a pending task to APPROVED, stamping the decision.
func (s *Service) Approve(ctx context.Context, taskID id.ID, notes string) (*Task, error) {
	t, err := s.transition(ctx, taskID, status.TaskApproved, notes, func(stored *Task) {
		now := time.Now().UTC()
		stored.ApprovedBy = actor.UserID(ctx)
		stored.ApprovedAt = &now
		stored.RejectionReason = ""
	})
	if err != nil {
		return nil, err
	}
	s.notifyDecided(ctx, t, true)
	return t, nil
}

// Reject moves a pending task to REJECTED with a reason.
func (s *Service) Reject(ctx context.Context, taskID id.ID, reason string) (*Task, error) {
	if reason == "" {
		return nil, apperror.NewValidation("rejection reason is required")
	}
	t, err := s.transition(ctx, taskID, status.TaskRejected, reason, func(stored *Task) {
		stored.RejectionReason = reason
	})
	if err != nil {
		return nil, err
	}
	s.notifyDecided(ctx, t, false)
	return t, nil
}

// Start moves an approved task into production.
func (s *Service) Start(ctx context.Context, taskID id.ID) (*Task, error) {
	return s.transition(ctx, taskID, status.TaskInProgress, "", nil)
}

// Complete finishes a task in progress.
func (s *Service) Complete(ctx context.Context, taskID id.ID, notes string) (*Task, error) {
	t, err := s.transition(ctx, taskID, status.TaskCompleted, notes, nil)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyTaskCompleted(ctx, t); err != nil {
			logger.Warn(ctx, "task completion notification failed",
				"task_id", t.ID.String(), "error", err)
		}
	}
	return t, nil
}

// Cancel aborts a task from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, taskID id.ID, reason string) (*Task, error) {
	return s.transition(ctx, taskID, status.TaskCancelled, reason, nil)
}

// AddDailyProgress appends a day's report and refreshes the rollups.
// Only tasks in progress accept reports.
func (s *Service) AddDailyProgress(ctx context.Context, taskID id.ID, report DailyProgress) (*Task, error) {
	if report.PiecesCompleted == 0 && report.HoursWorked.IsZero() {
		return nil, apperror.NewValidation("progress report is empty")
	}
	if report.HoursWorked.IsNegative() {
		return nil, apperror.NewValidation("hours worked cannot be negative")
	}

	report.EntryID = id.New()
	report.TaskID = taskID
	if report.Date.IsZero() {
		report.Date = time.Now().UTC()
	}
	report.RecordedBy = actor.UserID(ctx)

	return s.mutateWith(ctx, taskID, func(stored *Task) error {
		if stored.Status != status.TaskInProgress {
			return apperror.NewBusinessRule("TASK_NOT_IN_PROGRESS",
				"progress can only be reported on a task in progress").
				WithDetail("status", stored.Status)
		}
		stored.DailyProgress = append(stored.DailyProgress, report)
		RecomputeProgress(stored)
		if stored.PiecesCompleted < 0 {
			return apperror.NewValidation("completed pieces cannot go negative").
				WithDetail("pieces_completed", stored.PiecesCompleted)
		}
		return nil
	}, func(ctx context.Context, _ *Task) error {
		return s.repo.AppendProgress(ctx, report)
	})
}

// RecordQualityCheck stores the inspection outcome of a completed task.
func (s *Service) RecordQualityCheck(ctx context.Context, taskID id.ID, piecesRejected int64, notes string) (*Task, error) {
	if piecesRejected < 0 {
		return nil, apperror.NewValidation("rejected pieces cannot be negative").
			WithDetail("pieces_rejected", piecesRejected)
	}
	return s.mutateWith(ctx, taskID, func(stored *Task) error {
		if stored.Status != status.TaskCompleted {
			return apperror.NewBusinessRule("TASK_NOT_COMPLETED",
				"quality check applies to completed tasks only").
				WithDetail("status", stored.Status)
		}
		if piecesRejected > stored.PiecesCompleted {
			return apperror.NewValidation("cannot reject more pieces than were completed").
				WithDetail("pieces_completed", stored.PiecesCompleted).
				WithDetail("pieces_rejected", piecesRejected)
		}
		stored.QualityChecked = true
		stored.PiecesRejected = piecesRejected
		stored.QualityNotes = notes
		return nil
	}, nil)
}

// SetWage changes the piece wage of a task that has not entered production.
func (s *Service) SetWage(ctx context.Context, taskID id.ID, wagePerPiece types.Money) (*Task, error) {
	if wagePerPiece.IsNegative() {
		return nil, apperror.NewValidation("wage per piece cannot be negative")
	}
	return s.mutateWith(ctx, taskID, func(stored *Task) error {
		if stored.Status != status.TaskPendingApproval && stored.Status != status.TaskApproved {
			return apperror.NewBusinessRule("TASK_WAGE_LOCKED",
				"wage cannot change once production has started").
				WithDetail("status", stored.Status)
		}
		stored.WagePerPiece = wagePerPiece
		RecomputeWage(stored)
		return nil
	}, nil)
}

// transition is the shared guarded status move with history append.
func (s *Service) transition(ctx context.Context, taskID id.ID, to, notes string, apply func(stored *Task)) (*Task, error) {
	var entry status.HistoryEntry
	t, err := s.mutateWith(ctx, taskID, func(stored *Task) error {
		if err := s.machine.Guard(stored.Status, to); err != nil {
			return err
		}
		stored.Status = to
		if apply != nil {
			apply(stored)
		}
		entry = status.NewHistoryEntry(to, actor.UserID(ctx), notes)
		return nil
	}, func(ctx context.Context, stored *Task) error {
		return s.repo.AppendStatusHistory(ctx, stored.ID, entry)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "task status changed",
		"task_id", taskID.String(),
		"status", to)
	return t, nil
}

// mutateWith is the compare-and-swap write loop shared by all task updates;
// extra runs inside the same transaction as the version-checked update.
func (s *Service) mutateWith(ctx context.Context, taskID id.ID, fn func(stored *Task) error, extra func(ctx context.Context, stored *Task) error) (*Task, error) {
	var lastErr error

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		t, err := s.repo.GetByID(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if err := fn(t); err != nil {
			return nil, err
		}
		if err := t.Validate(ctx); err != nil {
			return nil, err
		}

		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.Update(ctx, t); err != nil {
				return err
			}
			if extra != nil {
				return extra(ctx, t)
			}
			return nil
		})
		if err == nil {
			return t, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, apperror.NewIndeterminate("task", taskID.String(), err)
		}
		if !apperror.IsConcurrentModification(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn(ctx, "task version conflict, retrying",
			"task_id", taskID.String(),
			"attempt", attempt+1)
	}

	return nil, lastErr
}

func (s *Service) notifyDecided(ctx context.Context, t *Task, approved bool) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyTaskDecided(ctx, t, approved); err != nil {
		logger.Warn(ctx, "task decision notification failed",
			"task_id", t.ID.String(), "error", err)
	}
}
