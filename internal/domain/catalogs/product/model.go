// Package product provides the finished-goods catalog with per-size
// production configuration.
package product

import (
	"context"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/types"
)

// SizeConfig configures one size of a product: how the size contributes
// to a cut ratio and what it consumes per piece.
type SizeConfig struct {
	Size string `db:"size" json:"size"`

	// Ratio is the size's share in a standard cut (e.g. S:1 M:2 L:2 XL:1).
	Ratio int `db:"ratio" json:"ratio"`

	// ThreadPerPieceKg drives allocation planning.
	ThreadPerPieceKg types.Quantity `db:"thread_per_piece_kg" json:"threadPerPieceKg"`

	// WagePerPiece seeds the piece wage of tasks cut for this size.
	WagePerPiece types.Money `db:"wage_per_piece" json:"wagePerPiece"`
}

// Product is a finished good that orders reference.
type Product struct {
	entity.Catalog

	Category string `db:"category" json:"category,omitempty"`

	// Difficulty grades production complexity (EASY, MEDIUM, HARD).
	Difficulty string `db:"difficulty" json:"difficulty,omitempty"`

	BasePrice types.Money `db:"base_price" json:"basePrice"`

	// EstimatedLaborHours per piece, feeding order aggregates.
	EstimatedLaborHours types.Quantity `db:"estimated_labor_hours" json:"estimatedLaborHours"`

	Sizes []SizeConfig `db:"-" json:"sizeConfig,omitempty"`
}

func New(name string) *Product {
	return &Product{Catalog: entity.NewCatalog("", name)}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if p.BasePrice.IsNegative() {
		return apperror.NewValidation("base price cannot be negative").
			WithDetail("field", "basePrice")
	}
	switch p.Difficulty {
	case "", "EASY", "MEDIUM", "HARD":
	default:
		return apperror.NewValidation("unknown difficulty grade").
			WithDetail("difficulty", p.Difficulty)
	}
	seen := make(map[string]bool, len(p.Sizes))
	for _, s := range p.Sizes {
		if s.Size == "" {
			return apperror.NewValidation("size label is required")
		}
		if seen[s.Size] {
			return apperror.NewValidation("duplicate size").
				WithDetail("size", s.Size)
		}
		seen[s.Size] = true
		if s.Ratio < 0 || s.ThreadPerPieceKg.IsNegative() || s.WagePerPiece.IsNegative() {
			return apperror.NewValidation("size config values cannot be negative").
				WithDetail("size", s.Size)
		}
	}
	return nil
}

// ThreadForQuantity estimates total thread for producing n pieces of a
// size, or zero when the size is not configured.
func (p *Product) ThreadForQuantity(size string, n int64) types.Quantity {
	for _, s := range p.Sizes {
		if s.Size == size {
			return types.Quantity(int64(s.ThreadPerPieceKg) * n)
		}
	}
	return 0
}
