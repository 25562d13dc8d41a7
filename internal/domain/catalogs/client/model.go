// Package client provides the client catalog: the buyers placing
// production orders.
package client

import (
	"context"
	"strings"

	"aurotex/internal/core/apperror"
	"aurotex/internal/core/entity"
	"aurotex/internal/core/types"
)

// Client is an order-placing counterparty.
type Client struct {
	entity.Catalog

	ContactPerson string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         string `db:"phone" json:"phone,omitempty"`
	Email         string `db:"email" json:"email,omitempty"`
	Address       string `db:"address" json:"address,omitempty"`

	// GSTIN is the tax registration number, optional for small buyers.
	GSTIN string `db:"gstin" json:"gstin,omitempty"`

	// CreditLimit caps outstanding order value; zero means no limit.
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// PaymentTermsDays is the agreed settlement window.
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays,omitempty"`
}

func New(name string) *Client {
	return &Client{Catalog: entity.NewCatalog("", name)}
}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email")
	}
	if c.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit cannot be negative").
			WithDetail("field", "creditLimit")
	}
	if c.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}
	return nil
}
