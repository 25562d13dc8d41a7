package rawmaterial

import (
	"context"

	"aurotex/internal/core/tx"
	"aurotex/internal/domain"
	"aurotex/pkg/numerator"
)

// Service provides business logic for the raw material catalog.
type Service struct {
	*domain.CatalogService[*RawMaterial]
	repo Repository
}

func NewService(repo Repository, txManager tx.Manager, numbers *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*RawMaterial]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numbers,
		EntityName: "raw_material",
		NumberCfg:  numerator.CatalogConfig("RM"),
	})
	return &Service{CatalogService: base, repo: repo}
}

// FindByKind retrieves materials of one kind.
func (s *Service) FindByKind(ctx context.Context, kind Kind, filter domain.ListFilter) (domain.ListResult[*RawMaterial], error) {
	return s.repo.FindByKind(ctx, kind, filter)
}
