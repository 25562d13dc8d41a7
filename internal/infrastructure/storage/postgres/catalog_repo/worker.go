package catalog_repo

import (
	"aurotex/internal/domain/catalogs/worker"
	"aurotex/internal/infrastructure/storage/postgres"
)

const workersTable = "cat_workers"

// WorkerRepo implements worker.Repository.
type WorkerRepo struct {
	*BaseCatalogRepo[*worker.Worker]
}

// NewWorkerRepo creates a new worker repository.
func NewWorkerRepo(txm *postgres.TxManager) *WorkerRepo {
	return &WorkerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			workersTable,
			postgres.ExtractDBColumns[worker.Worker](),
			func() *worker.Worker { return &worker.Worker{} },
		),
	}
}
