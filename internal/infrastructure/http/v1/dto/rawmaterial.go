package dto

import (
	"aurotex/internal/core/types"
	"aurotex/internal/domain/catalogs/rawmaterial"
)

// CreateRawMaterialRequest for creating raw materials.
type CreateRawMaterialRequest struct {
	Code             string      `json:"code"`
	Name             string      `json:"name" binding:"required"`
	Kind             string      `json:"kind" binding:"required"`
	Color            string      `json:"color"`
	Composition      string      `json:"composition"`
	Unit             string      `json:"unit"`
	DefaultCostPerKg types.Money `json:"defaultCostPerKg"`
	SupplierName     string      `json:"supplierName"`
	SupplierPhone    string      `json:"supplierPhone"`

	MinOrderQtyKg types.Quantity `json:"minOrderQtyKg"`
}

// ToEntity converts the request to a domain entity.
func (r CreateRawMaterialRequest) ToEntity() *rawmaterial.RawMaterial {
	m := rawmaterial.New(r.Name, rawmaterial.Kind(r.Kind))
	m.Code = r.Code
	m.Color = r.Color
	m.Composition = r.Composition
	if r.Unit != "" {
		m.Unit = r.Unit
	}
	m.DefaultCostPerKg = r.DefaultCostPerKg
	m.SupplierName = r.SupplierName
	m.SupplierPhone = r.SupplierPhone
	m.MinOrderQtyKg = r.MinOrderQtyKg
	return m
}

// UpdateRawMaterialRequest for updating raw materials.
type UpdateRawMaterialRequest struct {
	Name             *string      `json:"name"`
	Kind             *string      `json:"kind"`
	Color            *string      `json:"color"`
	Composition      *string      `json:"composition"`
	Unit             *string      `json:"unit"`
	DefaultCostPerKg *types.Money `json:"defaultCostPerKg"`
	SupplierName     *string      `json:"supplierName"`
	SupplierPhone    *string      `json:"supplierPhone"`

	MinOrderQtyKg *types.Quantity `json:"minOrderQtyKg"`

	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo maps changed fields onto an existing entity.
func (r UpdateRawMaterialRequest) ApplyTo(m *rawmaterial.RawMaterial) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Kind != nil {
		m.Kind = rawmaterial.Kind(*r.Kind)
	}
	if r.Color != nil {
		m.Color = *r.Color
	}
	if r.Composition != nil {
		m.Composition = *r.Composition
	}
	if r.Unit != nil {
		m.Unit = *r.Unit
	}
	if r.DefaultCostPerKg != nil {
		m.DefaultCostPerKg = *r.DefaultCostPerKg
	}
	if r.SupplierName != nil {
		m.SupplierName = *r.SupplierName
	}
	if r.SupplierPhone != nil {
		m.SupplierPhone = *r.SupplierPhone
	}
	if r.MinOrderQtyKg != nil {
		m.MinOrderQtyKg = *r.MinOrderQtyKg
	}
	m.Version = r.Version
}
