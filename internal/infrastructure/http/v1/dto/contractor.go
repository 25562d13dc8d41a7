package dto

import (
	"aurotex/internal/core/types"
	"aurotex/internal/domain/catalogs/contractor"
)

// CreateContractorRequest for creating contractors.
type CreateContractorRequest struct {
	Code                string      `json:"code"`
	Name                string      `json:"name" binding:"required"`
	ContactPerson       string      `json:"contactPerson"`
	Phone               string      `json:"phone"`
	Address             string      `json:"address"`
	Specialization      string      `json:"specialization"`
	DefaultWagePerPiece types.Money `json:"defaultWagePerPiece"`

	Rating                float64 `json:"rating"`
	MonthlyCapacityPieces int64   `json:"monthlyCapacityPieces"`
}

// ToEntity converts the request to a domain entity.
func (r CreateContractorRequest) ToEntity() *contractor.Contractor {
	c := contractor.New(r.Name)
	c.Code = r.Code
	c.ContactPerson = r.ContactPerson
	c.Phone = r.Phone
	c.Address = r.Address
	c.Specialization = r.Specialization
	c.DefaultWagePerPiece = r.DefaultWagePerPiece
	c.Rating = r.Rating
	c.MonthlyCapacityPieces = r.MonthlyCapacityPieces
	return c
}

// UpdateContractorRequest for updating contractors.
type UpdateContractorRequest struct {
	Name                *string      `json:"name"`
	ContactPerson       *string      `json:"contactPerson"`
	Phone               *string      `json:"phone"`
	Address             *string      `json:"address"`
	Specialization      *string      `json:"specialization"`
	DefaultWagePerPiece *types.Money `json:"defaultWagePerPiece"`
	Active              *bool        `json:"active"`

	Rating                *float64 `json:"rating"`
	MonthlyCapacityPieces *int64   `json:"monthlyCapacityPieces"`

	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo maps changed fields onto an existing entity.
func (r UpdateContractorRequest) ApplyTo(c *contractor.Contractor) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.ContactPerson != nil {
		c.ContactPerson = *r.ContactPerson
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Specialization != nil {
		c.Specialization = *r.Specialization
	}
	if r.DefaultWagePerPiece != nil {
		c.DefaultWagePerPiece = *r.DefaultWagePerPiece
	}
	if r.Active != nil {
		c.Active = *r.Active
	}
	if r.Rating != nil {
		c.Rating = *r.Rating
	}
	if r.MonthlyCapacityPieces != nil {
		c.MonthlyCapacityPieces = *r.MonthlyCapacityPieces
	}
	c.Version = r.Version
}
