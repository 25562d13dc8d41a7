// Package contractor provides the contractor catalog: external production
// units that take tasks on piece wages.
package contractor

import (
	"context"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/types"
)

// Contractor is an external production unit.
type Contractor struct {
	entity.Catalog

	ContactPerson string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         string `db:"phone" json:"phone,omitempty"`
	Address       string `db:"address" json:"address,omitempty"`

	// Specialization describes what the unit produces (stitching,
	// embroidery, finishing).
	Specialization string `db:"specialization" json:"specialization,omitempty"`

	// DefaultWagePerPiece seeds new tasks for this contractor.
	DefaultWagePerPiece types.Money `db:"default_wage_per_piece" json:"defaultWagePerPiece"`

	// Rating is a rolling quality score from 0 to 5, maintained manually.
	Rating float64 `db:"rating" json:"rating"`

	// MonthlyCapacityPieces bounds how much work planning should hand over.
	MonthlyCapacityPieces int64 `db:"monthly_capacity_pieces" json:"monthlyCapacityPieces,omitempty"`

	Active bool `db:"active" json:"active"`
}

func New(name string) *Contractor {
	return &Contractor{
		Catalog: entity.NewCatalog("", name),
		Active:  true,
	}
}

// Validate implements entity.Validatable.
func (c *Contractor) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if c.DefaultWagePerPiece.IsNegative() {
		return apperror.NewValidation("wage cannot be negative").
			WithDetail("field", "defaultWagePerPiece")
	}
	if c.Rating < 0 || c.Rating > 5 {
		return apperror.NewValidation("rating must be between 0 and 5").
			WithDetail("rating", c.Rating)
	}
	if c.MonthlyCapacityPieces < 0 {
		return apperror.NewValidation("capacity cannot be negative").
			WithDetail("field", "monthlyCapacityPieces")
	}
	return nil
}
