package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"aurotex/internal/domain"
	"aurotex/internal/domain/catalogs/contractor"
	"aurotex/internal/infrastructure/storage/postgres"
)

const contractorsTable = "cat_contractors"

// ContractorRepo implements contractor.Repository.
type ContractorRepo struct {
	*BaseCatalogRepo[*contractor.Contractor]
}

// NewContractorRepo creates a new contractor repository.
func NewContractorRepo(txm *postgres.TxManager) *ContractorRepo {
	return &ContractorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			contractorsTable,
			postgres.ExtractDBColumns[contractor.Contractor](),
			func() *contractor.Contractor { return &contractor.Contractor{} },
		),
	}
}

// FindActive retrieves contractors available for new tasks.
func (r *ContractorRepo) FindActive(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*contractor.Contractor], error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[contractor.Contractor]()...).
		From(contractorsTable).
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Eq{"deletion_mark": false})

	return r.ListQuery(ctx, q, filter)
}
