// Package worker provides the internal worker roster. Worker codes use a
// dedicated WRK-NNNN sequence that never resets.
package worker

import (
	"context"
	"time"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/id"
	"aurotex/internal/core/types"
)

// Worker is an in-house production employee.
type Worker struct {
	entity.Catalog

	// ContractorID is set for workers on a contractor's crew; nil for
	// direct employees.
	ContractorID *id.ID `db:"contractor_id" json:"contractorId,omitempty"`

	Phone string `db:"phone" json:"phone,omitempty"`

	// Skill is the primary operation (cutting, stitching, finishing).
	Skill string `db:"skill" json:"skill,omitempty"`

	JoinedAt time.Time `db:"joined_at" json:"joinedDate"`

	// WagePerPiece seeds new tasks assigned to this worker.
	WagePerPiece types.Money `db:"wage_per_piece" json:"wagePerPiece"`

	Active bool `db:"active" json:"active"`
}

func New(name string) *Worker {
	return &Worker{
		Catalog:  entity.NewCatalog("", name),
		JoinedAt: time.Now().UTC(),
		Active:   true,
	}
}

// Validate implements entity.Validatable.
func (w *Worker) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}
	if w.WagePerPiece.IsNegative() {
		return apperror.NewValidation("wage cannot be negative").
			WithDetail("field", "wagePerPiece")
	}
	return nil
}
