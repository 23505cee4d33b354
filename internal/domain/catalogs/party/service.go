package party

import (
	"khata/internal/core/tx"
	"khata/internal/domain"
)

// Service provides business logic for the Party catalog.
type Service struct {
	*domain.CatalogService[*Party]
	repo Repository
}

// NewService creates a new Party service.
func NewService(repo Repository, txManager tx.Manager, notifier domain.ChangeNotifier) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Party]{
		Repo:       repo,
		TxManager:  txManager,
		Notifier:   notifier,
		EntityName: "party",
		SyncTable:  "parties",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}
