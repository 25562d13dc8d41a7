package worker

import (
	"context"

	"aurotex/internal/core/id"
	"aurotex/internal/core/tx"
	"aurotex/internal/domain"
	"aurotex/pkg/numerator"
)

// Repository defines the interface for Worker persistence.
type Repository interface {
	domain.CatalogRepository[*Worker]
}

// RegistrationNotifier announces new workers joining the roster.
type RegistrationNotifier interface {
	NotifyWorkerRegistered(ctx context.Context, workerID id.ID, code, name string) error
}

// Service provides business logic for the worker roster.
type Service struct {
	*domain.CatalogService[*Worker]
	repo Repository
}

func NewService(repo Repository, txManager tx.Manager, numbers *numerator.Service, notifier RegistrationNotifier) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Worker]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numbers,
		EntityName: "worker",
		NumberCfg:  numerator.WorkerConfig(),
	})
	svc := &Service{CatalogService: base, repo: repo}

	if notifier != nil {
		base.Hooks().On(domain.AfterCreate, func(ctx context.Context, w *Worker) error {
			return notifier.NotifyWorkerRegistered(ctx, w.ID, w.Code, w.Name)
		})
	}
	return svc
}
