package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"aurotex/internal/domain"
	"aurotex/internal/domain/catalogs/rawmaterial"
	"aurotex/internal/infrastructure/storage/postgres"
)

const rawMaterialsTable = "cat_raw_materials"

// RawMaterialRepo implements rawmaterial.Repository.
type RawMaterialRepo struct {
	*BaseCatalogRepo[*rawmaterial.RawMaterial]
}

// NewRawMaterialRepo creates a new raw material repository.
func NewRawMaterialRepo(txm *postgres.TxManager) *RawMaterialRepo {
	return &RawMaterialRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			rawMaterialsTable,
			postgres.ExtractDBColumns[rawmaterial.RawMaterial](),
			func() *rawmaterial.RawMaterial { return &rawmaterial.RawMaterial{} },
		),
	}
}

// FindByKind retrieves materials of one kind.
func (r *RawMaterialRepo) FindByKind(ctx context.Context, kind rawmaterial.Kind, filter domain.ListFilter) (domain.ListResult[*rawmaterial.RawMaterial], error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[rawmaterial.RawMaterial]()...).
		From(rawMaterialsTable).
		Where(squirrel.Eq{"kind": kind}).
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	return r.ListQuery(ctx, q, filter)
}
