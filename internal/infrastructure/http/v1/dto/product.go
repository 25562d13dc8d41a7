package dto

import (
	"aurotex/internal/core/types"
	"aurotex/internal/domain/catalogs/product"
)

// SizeConfigRequest configures one size of a product.
type SizeConfigRequest struct {
	Size             string         `json:"size" binding:"required"`
	Ratio            int            `json:"ratio"`
	ThreadPerPieceKg types.Quantity `json:"threadPerPieceKg"`
	WagePerPiece     types.Money    `json:"wagePerPiece"`
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code                string              `json:"code"`
	Name                string              `json:"name" binding:"required"`
	Category            string              `json:"category"`
	Difficulty          string              `json:"difficulty"`
	BasePrice           types.Money         `json:"basePrice"`
	EstimatedLaborHours types.Quantity      `json:"estimatedLaborHours"`
	Sizes               []SizeConfigRequest `json:"sizeConfig"`
}

// ToEntity converts the request to a domain entity.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.New(r.Name)
	p.Code = r.Code
	p.Category = r.Category
	p.Difficulty = r.Difficulty
	p.BasePrice = r.BasePrice
	p.EstimatedLaborHours = r.EstimatedLaborHours
	p.Sizes = mapSizes(r.Sizes)
	return p
}

// UpdateProductRequest for updating products. Sizes replace the stored
// configuration wholesale when present.
type UpdateProductRequest struct {
	Name                *string             `json:"name"`
	Category            *string             `json:"category"`
	Difficulty          *string             `json:"difficulty"`
	BasePrice           *types.Money        `json:"basePrice"`
	EstimatedLaborHours *types.Quantity     `json:"estimatedLaborHours"`
	Sizes               []SizeConfigRequest `json:"sizeConfig"`
	Version             int                 `json:"version" binding:"required,min=1"`
}

// ApplyTo maps changed fields onto an existing entity.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Difficulty != nil {
		p.Difficulty = *r.Difficulty
	}
	if r.BasePrice != nil {
		p.BasePrice = *r.BasePrice
	}
	if r.EstimatedLaborHours != nil {
		p.EstimatedLaborHours = *r.EstimatedLaborHours
	}
	if r.Sizes != nil {
		p.Sizes = mapSizes(r.Sizes)
	}
	p.Version = r.Version
}

func mapSizes(in []SizeConfigRequest) []product.SizeConfig {
	if in == nil {
		return nil
	}
	sizes := make([]product.SizeConfig, len(in))
	for i, s := range in {
		sizes[i] = product.SizeConfig{
			Size:             s.Size,
			Ratio:            s.Ratio,
			ThreadPerPieceKg: s.ThreadPerPieceKg,
			WagePerPiece:     s.WagePerPiece,
		}
	}
	return sizes
}
