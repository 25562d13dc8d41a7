package dto

import (
	"aurotex/internal/core/types"
	"aurotex/internal/domain/catalogs/client"
)

// CreateClientRequest for creating clients.
type CreateClientRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	GSTIN         string `json:"gstin"`

	CreditLimit      types.Money `json:"creditLimit"`
	PaymentTermsDays int         `json:"paymentTermsDays"`
}

// ToEntity converts the request to a domain entity.
func (r CreateClientRequest) ToEntity() *client.Client {
	c := client.New(r.Name)
	c.Code = r.Code
	c.ContactPerson = r.ContactPerson
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.GSTIN = r.GSTIN
	c.CreditLimit = r.CreditLimit
	c.PaymentTermsDays = r.PaymentTermsDays
	return c
}

// UpdateClientRequest for updating clients.
type UpdateClientRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	GSTIN         *string `json:"gstin"`

	CreditLimit      *types.Money `json:"creditLimit"`
	PaymentTermsDays *int         `json:"paymentTermsDays"`

	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo maps changed fields onto an existing entity.
func (r UpdateClientRequest) ApplyTo(c *client.Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.ContactPerson != nil {
		c.ContactPerson = *r.ContactPerson
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.GSTIN != nil {
		c.GSTIN = *r.GSTIN
	}
	if r.CreditLimit != nil {
		c.CreditLimit = *r.CreditLimit
	}
	if r.PaymentTermsDays != nil {
		c.PaymentTermsDays = *r.PaymentTermsDays
	}
	c.Version = r.Version
}
