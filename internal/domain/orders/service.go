package orders

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
	"aurotex/internal/domain/inventory"
	"aurotex/internal/domain/status"
	"aurotex/pkg/logger"
	"aurotex/pkg/numerator"
)

const maxCASRetries = 3

// StockAllocator is the slice of the inventory service the order flow needs.
type StockAllocator interface {
	GetByMaterial(ctx context.Context, rawMaterialID id.ID) (*inventory.Lot, error)
	Allocate(ctx context.Context, lotID, orderID id.ID, qty types.Quantity) (*inventory.Lot, error)
	Release(ctx context.Context, lotID, orderID id.ID, qty types.Quantity) (*inventory.Lot, error)
	Consume(ctx context.Context, lotID, orderID id.ID, qty types.Quantity, notes string) (*inventory.Lot, error)
}

// Numberer issues sequential document numbers.
type Numberer interface {
	GetNextNumber(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error)
}

// Notifier announces order lifecycle events. Delivery is best-effort:
// failures are logged, never propagated.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, orderID id.ID, orderNumber, newStatus string) error
}

// Service owns the order lifecycle: drafting, item editing, status
// transitions and the thread allocation flow against the stock ledger.
type Service struct {
	repo      Repository
	txManager tx.Manager
	stock     StockAllocator
	numbers   Numberer
	notifier  Notifier
	machine   *status.Machine
}

func NewService(repo Repository, txManager tx.Manager, stock StockAllocator, numbers Numberer, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		stock:     stock,
		numbers:   numbers,
		notifier:  notifier,
		machine:   status.Orders(),
	}
}

// Create persists a new draft order, assigning the next sequential number.
func (s *Service) Create(ctx context.Context, o *Order) (*Order, error) {
	if o == nil {
		return nil, apperror.NewValidation("order is required")
	}
	o.Status = status.OrderDraft
	for i := range o.Items {
		if id.IsNil(o.Items[i].LineID) {
			o.Items[i].LineID = id.New()
		}
		if o.Items[i].Status == "" {
			o.Items[i].Status = ItemPending
		}
	}
	RecomputeTotals(o)
	if err := o.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.GetNextNumber(ctx, numerator.OrderConfig(), nil, time.Now())
		if err != nil {
			return err
		}
		o.Number = number

		if err := s.repo.Create(ctx, o); err != nil {
			return err
		}
		entry := status.NewHistoryEntry(o.Status, actor.UserID(ctx), "order created")
		return s.repo.AppendStatusHistory(ctx, o.ID, entry)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created",
		"order_id", o.ID.String(),
		"number", o.Number)
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ListByClient(ctx context.Context, clientID id.ID, filter domain.ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.ListByClient(ctx, clientID, filter)
}

// UpdateDraft replaces header fields and items of a draft order.
// Once confirmed, items are frozen and only status moves forward.
func (s *Service) UpdateDraft(ctx context.Context, o *Order) (*Order, error) {
	if o == nil {
		return nil, apperror.NewValidation("order is required")
	}
	return s.mutate(ctx, o.ID, func(stored *Order) error {
		if stored.Status != status.OrderDraft {
			return apperror.NewBusinessRule("ORDER_NOT_EDITABLE",
				"only draft orders can be edited").
				WithDetail("status", stored.Status)
		}
		stored.ClientID = o.ClientID
		stored.DeliveryDate = o.DeliveryDate
		stored.Priority = o.Priority
		stored.Comment = o.Comment
		stored.Items = o.Items
		for i := range stored.Items {
			if id.IsNil(stored.Items[i].LineID) {
				stored.Items[i].LineID = id.New()
			}
			if stored.Items[i].Status == "" {
				stored.Items[i].Status = ItemPending
			}
		}
		RecomputeTotals(stored)
		return nil
	})
}

// ChangeStatus moves the order through its state machine, appending a
// status history entry in the same transaction as the write.
func (s *Service) ChangeStatus(ctx context.Context, orderID id.ID, to, notes string) (*Order, error) {
	var entry status.HistoryEntry
	o, err := s.mutateWith(ctx, orderID, func(stored *Order) error {
		if err := s.machine.Guard(stored.Status, to); err != nil {
			return err
		}
		if to == status.OrderConfirmed {
			if len(stored.Items) == 0 {
				return apperror.NewBusinessRule("ORDER_EMPTY",
					"cannot confirm an order without items")
			}
			stored.ApprovedBy = actor.UserID(ctx)
			now := time.Now().UTC()
			stored.ApprovedAt = &now
		}
		stored.Status = to
		entry = status.NewHistoryEntry(to, actor.UserID(ctx), notes)
		return nil
	}, func(ctx context.Context, stored *Order) error {
		return s.repo.AppendStatusHistory(ctx, stored.ID, entry)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "order status changed",
		"order_id", orderID.String(),
		"status", to)
	s.notifyStatus(ctx, o)
	return o, nil
}

// Approve confirms a draft order, stamping who approved it and when in
// addition to the history entry.
func (s *Service) Approve(ctx context.Context, orderID id.ID, notes string) (*Order, error) {
	return s.ChangeStatus(ctx, orderID, status.OrderConfirmed, notes)
}

// AssignContractor hands a confirmed order to one contractor and starts
// production.
func (s *Service) AssignContractor(ctx context.Context, orderID, contractorID id.ID, notes string) (*Order, error) {
	if id.IsNil(contractorID) {
		return nil, apperror.NewValidation("contractor is required").
			WithDetail("field", "contractorId")
	}

	var entry status.HistoryEntry
	o, err := s.mutateWith(ctx, orderID, func(stored *Order) error {
		if err := s.machine.Guard(stored.Status, status.OrderInProgress); err != nil {
			return err
		}
		stored.Status = status.OrderInProgress
		stored.AssignedContractorID = &contractorID
		entry = status.NewHistoryEntry(status.OrderInProgress, actor.UserID(ctx), notes)
		return nil
	}, func(ctx context.Context, stored *Order) error {
		return s.repo.AppendStatusHistory(ctx, stored.ID, entry)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "order assigned",
		"order_id", orderID.String(),
		"contractor_id", contractorID.String())
	s.notifyStatus(ctx, o)
	return o, nil
}

func (s *Service) notifyStatus(ctx context.Context, o *Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOrderStatus(ctx, o.ID, o.Number, o.Status); err != nil {
		logger.Warn(ctx, "order status notification failed",
			"order_id", o.ID.String(), "error", err)
	}
}

// Cancel moves the order to CANCELLED and releases every outstanding
// thread reservation back to the lots.
func (s *Service) Cancel(ctx context.Context, orderID id.ID, reason string) (*Order, error) {
	o, err := s.ChangeStatus(ctx, orderID, status.OrderCancelled, reason)
	if err != nil {
		return nil, err
	}

	// Releases run after the status write; each goes through the ledger's
	// own retry loop. A failed release leaves a reservation behind, which
	// the movement log makes visible for manual correction.
	for i := range o.Items {
		item := &o.Items[i]
		for _, a := range item.ThreadAllocations {
			if !a.AllocatedKg.IsPositive() {
				continue
			}
			if _, err := s.stock.Release(ctx, a.LotID, o.ID, a.AllocatedKg); err != nil {
				logger.Error(ctx, "release on cancel failed",
					"order_id", o.ID.String(),
					"lot_id", a.LotID.String(),
					"error", err)
			}
		}
		item.ThreadAllocations = nil
	}

	return s.mutate(ctx, orderID, func(stored *Order) error {
		for i := range stored.Items {
			stored.Items[i].ThreadAllocations = nil
			if stored.Items[i].Status != ItemCompleted {
				stored.Items[i].Status = ItemCancelled
			}
		}
		RecomputeTotals(stored)
		return nil
	})
}

// AllocateThread reserves thread from a material's lot for one order item.
// The ledger write happens first; the order-side allocation record is
// mirrored afterwards, so on failure nothing is reserved.
func (s *Service) AllocateThread(ctx context.Context, orderID, itemLineID, rawMaterialID id.ID, qtyKg types.Quantity) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if s.machine.IsTerminal(o.Status) {
		return nil, apperror.NewBusinessRule("ORDER_CLOSED",
			"cannot allocate thread for a closed order").
			WithDetail("status", o.Status)
	}
	if o.Item(itemLineID) == nil {
		return nil, apperror.NewNotFound("order_item", itemLineID.String())
	}

	lot, err := s.stock.GetByMaterial(ctx, rawMaterialID)
	if err != nil {
		return nil, err
	}
	lot, err = s.stock.Allocate(ctx, lot.ID, orderID, qtyKg)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(stored *Order) error {
		item := stored.Item(itemLineID)
		if item == nil {
			return apperror.NewNotFound("order_item", itemLineID.String())
		}
		item.ThreadAllocations = append(item.ThreadAllocations, ThreadAllocation{
			RawMaterialID: rawMaterialID,
			LotID:         lot.ID,
			AllocatedKg:   qtyKg,
			CostPerKg:     lot.CostPerKg,
			AllocatedAt:   time.Now().UTC(),
		})
		if item.Status == ItemPending {
			item.Status = ItemAllocated
		}
		RecomputeTotals(stored)
		return nil
	})
}

// ReleaseThread returns part of an item's reservation to the lot.
func (s *Service) ReleaseThread(ctx context.Context, orderID, itemLineID, rawMaterialID id.ID, qtyKg types.Quantity) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := o.Item(itemLineID)
	if item == nil {
		return nil, apperror.NewNotFound("order_item", itemLineID.String())
	}

	idx, held := allocationFor(item, rawMaterialID)
	if idx < 0 || qtyKg > held {
		return nil, apperror.NewOverRelease(rawMaterialID.String(), qtyKg.Float64(), held.Float64())
	}
	lotID := item.ThreadAllocations[idx].LotID

	if _, err := s.stock.Release(ctx, lotID, orderID, qtyKg); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(stored *Order) error {
		item := stored.Item(itemLineID)
		if item == nil {
			return apperror.NewNotFound("order_item", itemLineID.String())
		}
		reduceAllocation(item, rawMaterialID, qtyKg)
		RecomputeTotals(stored)
		return nil
	})
}

// ConsumeThread issues reserved thread to production: the lot's physical
// stock drops and the order-side reservation shrinks by the same amount.
func (s *Service) ConsumeThread(ctx context.Context, orderID, itemLineID, rawMaterialID id.ID, qtyKg types.Quantity, notes string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := o.Item(itemLineID)
	if item == nil {
		return nil, apperror.NewNotFound("order_item", itemLineID.String())
	}

	idx, held := allocationFor(item, rawMaterialID)
	if idx < 0 || qtyKg > held {
		return nil, apperror.NewOverRelease(rawMaterialID.String(), qtyKg.Float64(), held.Float64())
	}
	lotID := item.ThreadAllocations[idx].LotID

	if _, err := s.stock.Consume(ctx, lotID, orderID, qtyKg, notes); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(stored *Order) error {
		item := stored.Item(itemLineID)
		if item == nil {
			return apperror.NewNotFound("order_item", itemLineID.String())
		}
		reduceAllocation(item, rawMaterialID, qtyKg)
		RecomputeTotals(stored)
		return nil
	})
}

// SetItemStatus moves one line item and derives the header status when all
// items settle (PARTIALLY_COMPLETED / COMPLETED).
func (s *Service) SetItemStatus(ctx context.Context, orderID, itemLineID id.ID, itemStatus string) (*Order, error) {
	switch itemStatus {
	case ItemPending, ItemAllocated, ItemAssigned, ItemInProgress, ItemCompleted, ItemCancelled:
	default:
		return nil, apperror.NewValidation("unknown item status").
			WithDetail("status", itemStatus)
	}

	var entry *status.HistoryEntry
	return s.mutateWith(ctx, orderID, func(stored *Order) error {
		entry = nil
		item := stored.Item(itemLineID)
		if item == nil {
			return apperror.NewNotFound("order_item", itemLineID.String())
		}
		item.Status = itemStatus

		if next := deriveOrderStatus(stored); next != "" && next != stored.Status {
			if s.machine.Guard(stored.Status, next) == nil {
				stored.Status = next
				e := status.NewHistoryEntry(next, actor.UserID(ctx), "derived from item completion")
				entry = &e
			}
		}
		return nil
	}, func(ctx context.Context, stored *Order) error {
		if entry == nil {
			return nil
		}
		return s.repo.AppendStatusHistory(ctx, stored.ID, *entry)
	})
}

// deriveOrderStatus returns the header status the items imply, or "" when
// they imply nothing: every settled item means COMPLETED, a mix of
// completed and open items means PARTIALLY_COMPLETED.
func deriveOrderStatus(o *Order) string {
	if len(o.Items) == 0 {
		return ""
	}
	var completed, open int
	for _, it := range o.Items {
		switch it.Status {
		case ItemCompleted:
			completed++
		case ItemCancelled:
		default:
			open++
		}
	}
	if completed == 0 {
		return ""
	}
	if open == 0 {
		return status.OrderCompleted
	}
	return status.OrderPartiallyCompleted
}

func allocationFor(item *OrderItem, rawMaterialID id.ID) (int, types.Quantity) {
	for i, a := range item.ThreadAllocations {
		if a.RawMaterialID == rawMaterialID {
			return i, a.AllocatedKg
		}
	}
	return -1, 0
}

func reduceAllocation(item *OrderItem, rawMaterialID id.ID, qty types.Quantity) {
	idx, _ := allocationFor(item, rawMaterialID)
	if idx < 0 {
		return
	}
	item.ThreadAllocations[idx].AllocatedKg -= qty
	if !item.ThreadAllocations[idx].AllocatedKg.IsPositive() {
		item.ThreadAllocations = append(item.ThreadAllocations[:idx], item.ThreadAllocations[idx+1:]...)
	}
}

// mutate is the compare-and-swap write loop shared by all order updates.
func (s *Service) mutate(ctx context.Context, orderID id.ID, fn func(stored *Order) error) (*Order, error) {
	return s.mutateWith(ctx, orderID, fn, nil)
}

// mutateWith additionally runs extra inside the same transaction as the
// version-checked update (used to append status history atomically).
func (s *Service) mutateWith(ctx context.Context, orderID id.ID, fn func(stored *Order) error, extra func(ctx context.Context, stored *Order) error) (*Order, error) {
	var lastErr error

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		o, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if err := fn(o); err != nil {
			return nil, err
		}
		if err := o.Validate(ctx); err != nil {
			return nil, err
		}

		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.Update(ctx, o); err != nil {
				return err
			}
			if extra != nil {
				return extra(ctx, o)
			}
			return nil
		})
		if err == nil {
			return o, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, apperror.NewIndeterminate("order", orderID.String(), err)
		}
		if !apperror.IsConcurrentModification(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn(ctx, "order version conflict, retrying",
			"order_id", orderID.String(),
			"attempt", attempt+1)
	}

	return nil, lastErr
}
