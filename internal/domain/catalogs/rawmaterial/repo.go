package rawmaterial

import (
	"context"

	"aurotex/internal/domain"
)

// Repository defines the interface for RawMaterial persistence.
type Repository interface {
	domain.CatalogRepository[*RawMaterial]

	// FindByKind retrieves materials of one kind.
	FindByKind(ctx context.Context, kind Kind, filter domain.ListFilter) (domain.ListResult[*RawMaterial], error)
}
