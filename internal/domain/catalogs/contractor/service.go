package contractor

import (
	"context"

	"aurotex/internal/core/tx"
	"aurotex/internal/domain"
	"aurotex/pkg/numerator"
)

// Repository defines the interface for Contractor persistence.
type Repository interface {
	domain.CatalogRepository[*Contractor]

	// FindActive retrieves contractors available for new tasks.
	FindActive(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Contractor], error)
}

// Service provides business logic for the contractor catalog.
type Service struct {
	*domain.CatalogService[*Contractor]
	repo Repository
}

func NewService(repo Repository, txManager tx.Manager, numbers *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Contractor]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numbers,
		EntityName: "contractor",
		NumberCfg:  numerator.CatalogConfig("CNT"),
	})
	return &Service{CatalogService: base, repo: repo}
}

// FindActive retrieves contractors available for new tasks.
func (s *Service) FindActive(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Contractor], error) {
	return s.repo.FindActive(ctx, filter)
}

// Deactivate takes a contractor off the active roster without deleting it.
func (s *Service) Deactivate(ctx context.Context, c *Contractor) error {
	c.Active = false
	return s.Update(ctx, c)
}
