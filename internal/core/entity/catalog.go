package entity

import (
	"context"

	"aurotex/internal/core/apperror"
)

// Catalog is the base type for reference data.
// Examples: RawMaterial, Client, Contractor, Worker, Product.
type Catalog struct {
	BaseCatalog

	// Code is a human-readable identifier (unique within the collection,
	// e.g. RM-0007, WRK-0012). Auto-generated at creation when empty.
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// GetCode returns the catalog code.
func (c *Catalog) GetCode() string { return c.Code }

// SetCode sets the catalog code (used by auto-generation on create).
func (c *Catalog) SetCode(code string) { c.Code = code }

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code can be auto-generated, so it's optional at creation
	// but required at save time

	return nil
}
