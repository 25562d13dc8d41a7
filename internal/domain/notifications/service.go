package notifications

import (
	"context"
	"fmt"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/tx"
	"aurotex/internal/core/types"
	"aurotex/internal/domain"
	"aurotex/internal/domain/inventory"
	"aurotex/internal/domain/tasks"
	"aurotex/pkg/logger"
)

// Service creates and serves notifications. It implements the notifier
// interfaces of the inventory and task services, running stock events
// through the CEL rule engine to decide what fires.
type Service struct {
	repo      Repository
	txManager tx.Manager
	rules     *RuleEngine
}

func NewService(repo Repository, txManager tx.Manager, rules *RuleEngine) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		rules:     rules,
	}
}

// --- inventory.Notifier ---

// NotifyStockLow evaluates the stock rules against the lot and creates one
// notification for the highest-priority match. The critical flag from the
// ledger is advisory; the rule set decides.
func (s *Service) NotifyStockLow(ctx context.Context, lot *inventory.Lot, _ bool) error {
	matched, err := s.rules.Evaluate(lot)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return nil
	}

	// Rules are registered most-severe first; the first match wins.
	rule := matched[0]
	n := New(rule.Type, rule.Priority,
		"Stock alert",
		fmt.Sprintf("Material %s is down to %s kg (%s kg available)",
			lot.RawMaterialID.String(), lot.CurrentStockKg, lot.AvailableKg),
		lot.ID)
	n.RecipientRole = actor.RoleAdmin
	return s.create(ctx, n)
}

func (s *Service) NotifyRestocked(ctx context.Context, lot *inventory.Lot, qty types.Quantity) error {
	n := New(TypeStockRestocked, PriorityLow,
		"Stock replenished",
		fmt.Sprintf("Material %s restocked by %s kg, now %s kg",
			lot.RawMaterialID.String(), qty, lot.CurrentStockKg),
		lot.ID)
	n.RecipientRole = actor.RoleAdmin
	return s.create(ctx, n)
}

// --- tasks.Notifier ---

func (s *Service) NotifyTaskAssigned(ctx context.Context, t *tasks.Task) error {
	n := New(TypeTaskAssigned, PriorityMedium,
		"New task pending approval",
		fmt.Sprintf("Task %s for %d pieces awaits approval", t.Number, t.Quantity),
		t.ID)
	n.RecipientRole = actor.RoleAdmin
	return s.create(ctx, n)
}

func (s *Service) NotifyTaskDecided(ctx context.Context, t *tasks.Task, approved bool) error {
	typ, title := TypeTaskApproved, "Task approved"
	if !approved {
		typ, title = TypeTaskRejected, "Task rejected"
	}
	n := New(typ, PriorityMedium, title,
		fmt.Sprintf("Task %s: %s", t.Number, decisionMessage(t, approved)),
		t.ID)
	n.RecipientRole = actor.RoleContractor
	if uid := assigneeUserID(t); uid != "" {
		n.RecipientUserID = uid
	}
	return s.create(ctx, n)
}

func (s *Service) NotifyTaskCompleted(ctx context.Context, t *tasks.Task) error {
	n := New(TypeTaskCompleted, PriorityMedium,
		"Task completed",
		fmt.Sprintf("Task %s finished with %d pieces, wage %s",
			t.Number, t.PiecesCompleted, t.TotalWage),
		t.ID)
	n.RecipientRole = actor.RoleAdmin
	return s.create(ctx, n)
}

// NotifyWorkerRegistered announces a new worker joining the roster.
func (s *Service) NotifyWorkerRegistered(ctx context.Context, workerID id.ID, code, name string) error {
	n := New(TypeWorkerRegistered, PriorityLow,
		"Worker registered",
		fmt.Sprintf("Worker %s (%s) joined the roster", name, code),
		workerID)
	n.RecipientRole = actor.RoleAdmin
	return s.create(ctx, n)
}

// NotifyOrderStatus announces an order status change to internal staff.
func (s *Service) NotifyOrderStatus(ctx context.Context, orderID id.ID, orderNumber, newStatus string) error {
	n := New(TypeOrderStatus, PriorityMedium,
		"Order status changed",
		fmt.Sprintf("Order %s moved to %s", orderNumber, newStatus),
		orderID)
	n.RecipientRole = actor.RoleInternalEmployee
	return s.create(ctx, n)
}

// --- inbox ---

func (s *Service) ListForCurrentUser(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Notification], error) {
	a := actor.FromContext(ctx)
	if a.IsZero() {
		return domain.ListResult[*Notification]{}, apperror.NewUnauthorized("no authenticated user")
	}
	return s.repo.ListForUser(ctx, a.UserID, a.Role, filter)
}

func (s *Service) CountUnread(ctx context.Context) (int64, error) {
	a := actor.FromContext(ctx)
	if a.IsZero() {
		return 0, apperror.NewUnauthorized("no authenticated user")
	}
	return s.repo.CountUnread(ctx, a.UserID, a.Role)
}

func (s *Service) MarkRead(ctx context.Context, notificationID id.ID) error {
	if _, err := s.repo.GetByID(ctx, notificationID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	a := actor.FromContext(ctx)
	if a.IsZero() {
		return apperror.NewUnauthorized("no authenticated user")
	}
	return s.repo.MarkAllRead(ctx, a.UserID, a.Role)
}

func (s *Service) create(ctx context.Context, n *Notification) error {
	if err := n.Validate(ctx); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, n)
	})
	if err != nil {
		return err
	}
	logger.Debug(ctx, "notification created",
		"type", string(n.Type),
		"entity_id", n.EntityID.String())
	return nil
}

func decisionMessage(t *tasks.Task, approved bool) string {
	if approved {
		return "approved, production may start"
	}
	if t.RejectionReason != "" {
		return "rejected: " + t.RejectionReason
	}
	return "rejected"
}

func assigneeUserID(t *tasks.Task) string {
	// Assignees are catalog records, not users; targeting by user id is
	// only possible when the contractor record carries a linked account.
	// Role targeting covers the rest.
	return ""
}
