package inventory

import (
	"context"
	"errors"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
	"aurotex/internal/core/tx"
	"aurotex/internal/core/types"
	"aurotex/internal/domain"
	"aurotex/pkg/logger"
)

// maxCASRetries bounds the reload-and-retry loop on version conflicts.
// Past this, the conflict is surfaced to the caller unchanged.
const maxCASRetries = 3

// Notifier receives stock events after a successful write. Delivery is
// best-effort: failures are logged, never propagated to the caller.
type Notifier interface {
	NotifyStockLow(ctx context.Context, lot *Lot, critical bool) error
	NotifyRestocked(ctx context.Context, lot *Lot, qty types.Quantity) error
}

// Service owns all lot mutations. Every write goes through the
// compare-and-swap loop in mutate: reload, apply, write version-checked.
type Service struct {
	repo      Repository
	txManager tx.Manager
	notifier  Notifier
}

func NewService(repo Repository, txManager tx.Manager, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		notifier:  notifier,
	}
}

// CreateLot registers a lot for a material's first stocking. A material has
// at most one lot; a duplicate is rejected before insert.
func (s *Service) CreateLot(ctx context.Context, lot *Lot) (*Lot, error) {
	if lot == nil {
		return nil, apperror.NewValidation("lot is required")
	}
	lot.recompute()
	if err := lot.Validate(ctx); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByMaterial(ctx, lot.RawMaterialID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewValidation("material already has a stock lot").
			WithDetail("raw_material_id", lot.RawMaterialID.String()).
			WithDetail("lot_id", existing.ID.String())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, lot); err != nil {
			return err
		}
		if lot.CurrentStockKg.IsPositive() {
			m := newMovement(lot.ID, MovementIn, lot.CurrentStockKg, nil, "initial stock", actor.UserID(ctx))
			return s.repo.AppendMovement(ctx, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock lot created",
		"lot_id", lot.ID.String(),
		"raw_material_id", lot.RawMaterialID.String())
	return lot, nil
}

// Restock records an inbound delivery.
func (s *Service) Restock(ctx context.Context, lotID id.ID, qty types.Quantity, notes string) (*Lot, error) {
	lot, _, err := s.mutate(ctx, lotID, func(l *Lot) (Movement, error) {
		return l.Restock(qty, actor.UserID(ctx), notes)
	})
	if err != nil {
		return nil, err
	}
	s.notifyRestocked(ctx, lot, qty)
	return lot, nil
}

// Adjust corrects physical stock to a counted absolute value.
func (s *Service) Adjust(ctx context.Context, lotID id.ID, newStockKg types.Quantity, reason string) (*Lot, error) {
	lot, _, err := s.mutate(ctx, lotID, func(l *Lot) (Movement, error) {
		return l.Adjust(newStockKg, actor.UserID(ctx), reason)
	})
	if err != nil {
		return nil, err
	}
	s.notifyLowStock(ctx, lot)
	return lot, nil
}

// Allocate reserves stock for an order.
func (s *Service) Allocate(ctx context.Context, lotID, orderID id.ID, qty types.Quantity) (*Lot, error) {
	lot, _, err := s.mutate(ctx, lotID, func(l *Lot) (Movement, error) {
		return l.Allocate(orderID, qty, actor.UserID(ctx))
	})
	if err != nil {
		return nil, err
	}
	s.notifyLowStock(ctx, lot)
	return lot, nil
}

// Release returns a reservation to the available share.
func (s *Service) Release(ctx context.Context, lotID, orderID id.ID, qty types.Quantity) (*Lot, error) {
	lot, _, err := s.mutate(ctx, lotID, func(l *Lot) (Movement, error) {
		return l.Release(orderID, qty, actor.UserID(ctx))
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// Consume issues reserved stock to production, reducing both physical
// and reserved quantity.
func (s *Service) Consume(ctx context.Context, lotID, orderID id.ID, qty types.Quantity, notes string) (*Lot, error) {
	lot, _, err := s.mutate(ctx, lotID, func(l *Lot) (Movement, error) {
		return l.Consume(orderID, qty, actor.UserID(ctx), notes)
	})
	if err != nil {
		return nil, err
	}
	s.notifyLowStock(ctx, lot)
	return lot, nil
}

// UpdatePolicy changes thresholds, unit cost and location. No movement is
// written: policy edits do not move quantity. Derived fields and alerts are
// refreshed against the new bounds.
func (s *Service) UpdatePolicy(ctx context.Context, lotID id.ID, p Policy) (*Lot, error) {
	lot, _, err := s.mutate(ctx, lotID, func(l *Lot) (Movement, error) {
		l.ThresholdKg = p.ThresholdKg
		l.ReorderPointKg = p.ReorderPointKg
		l.MaxStockKg = p.MaxStockKg
		l.CostPerKg = p.CostPerKg
		l.Location = p.Location
		l.recompute()
		return Movement{}, nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyLowStock(ctx, lot)
	return lot, nil
}

// Policy carries the editable non-quantity lot settings.
type Policy struct {
	ThresholdKg    types.Quantity `json:"thresholdKg"`
	ReorderPointKg types.Quantity `json:"reorderPointKg"`
	MaxStockKg     types.Quantity `json:"maxStockKg"`
	CostPerKg      types.Money    `json:"costPerKg"`
	Location       string         `json:"location"`
}

// Delete marks a lot deleted. The movement log stays in place, so deletion
// is always a soft mark; a lot with outstanding allocations cannot be
// deleted until every reservation is released or consumed.
func (s *Service) Delete(ctx context.Context, lotID id.ID) error {
	lot, err := s.repo.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot.AllocatedKg.IsPositive() {
		return apperror.NewValidation("lot has outstanding allocations").
			WithDetail("allocated_kg", lot.AllocatedKg.String())
	}
	if err := s.repo.Delete(ctx, lotID); err != nil {
		return err
	}
	logger.Info(ctx, "stock lot deleted", "lot_id", lotID.String())
	return nil
}

func (s *Service) GetByID(ctx context.Context, lotID id.ID) (*Lot, error) {
	return s.repo.GetByID(ctx, lotID)
}

func (s *Service) GetByMaterial(ctx context.Context, rawMaterialID id.ID) (*Lot, error) {
	return s.repo.GetByMaterial(ctx, rawMaterialID)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Lot], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) GetMovements(ctx context.Context, lotID id.ID, limit int) ([]Movement, error) {
	if _, err := s.repo.GetByID(ctx, lotID); err != nil {
		return nil, err
	}
	return s.repo.GetMovements(ctx, lotID, limit)
}

func (s *Service) ListLowStock(ctx context.Context) ([]*Lot, error) {
	return s.repo.ListLowStock(ctx)
}

// mutate runs the compare-and-swap write loop: reload the lot, apply fn,
// persist lot and movement in one transaction. On a version conflict the
// whole cycle repeats against fresh state, up to maxCASRetries. A context
// deadline hit during the write leaves the outcome unknown and is reported
// as indeterminate rather than as a plain failure.
func (s *Service) mutate(ctx context.Context, lotID id.ID, fn func(l *Lot) (Movement, error)) (*Lot, Movement, error) {
	var lastErr error

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		lot, err := s.repo.GetByID(ctx, lotID)
		if err != nil {
			return nil, Movement{}, err
		}

		m, err := fn(lot)
		if err != nil {
			return nil, Movement{}, err
		}
		if err := lot.Validate(ctx); err != nil {
			return nil, Movement{}, err
		}

		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.Update(ctx, lot); err != nil {
				return err
			}
			if m.LineID == id.Nil() {
				return nil
			}
			return s.repo.AppendMovement(ctx, m)
		})
		if err == nil {
			return lot, m, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, Movement{}, apperror.NewIndeterminate("inventory_lot", lotID.String(), err)
		}
		if !apperror.IsConcurrentModification(err) {
			return nil, Movement{}, err
		}

		lastErr = err
		logger.Warn(ctx, "lot version conflict, retrying",
			"lot_id", lotID.String(),
			"attempt", attempt+1)
	}

	return nil, Movement{}, lastErr
}

func (s *Service) notifyLowStock(ctx context.Context, lot *Lot) {
	if s.notifier == nil || !lot.Alerts.LowStock {
		return
	}
	critical := lot.ThresholdKg.IsPositive() && lot.CurrentStockKg <= lot.ThresholdKg/2
	if err := s.notifier.NotifyStockLow(ctx, lot, critical); err != nil {
		logger.Warn(ctx, "low stock notification failed",
			"lot_id", lot.ID.String(), "error", err)
	}
}

func (s *Service) notifyRestocked(ctx context.Context, lot *Lot, qty types.Quantity) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyRestocked(ctx, lot, qty); err != nil {
		logger.Warn(ctx, "restock notification failed",
			"lot_id", lot.ID.String(), "error", err)
	}
}
