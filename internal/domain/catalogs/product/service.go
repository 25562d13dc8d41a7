package product

import (
	"aurotex/internal/core/tx"
	"aurotex/internal/domain"
	"aurotex/pkg/numerator"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]
}

// Service provides business logic for the product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

func NewService(repo Repository, txManager tx.Manager, numbers *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numbers,
		EntityName: "product",
		NumberCfg:  numerator.CatalogConfig("PRD"),
	})
	return &Service{CatalogService: base, repo: repo}
}
