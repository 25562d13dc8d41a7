package client

import (
	"aurotex/internal/core/tx"
	"aurotex/internal/domain"
	"aurotex/pkg/numerator"
)

// Repository defines the interface for Client persistence.
type Repository interface {
	domain.CatalogRepository[*Client]
}

// Service provides business logic for the client catalog.
type Service struct {
	*domain.CatalogService[*Client]
	repo Repository
}

func NewService(repo Repository, txManager tx.Manager, numbers *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Client]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numbers,
		EntityName: "client",
		NumberCfg:  numerator.CatalogConfig("CLT"),
	})
	return &Service{CatalogService: base, repo: repo}
}
