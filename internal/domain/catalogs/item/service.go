package item

import (
	"context"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/core/tx"
	"khata/internal/domain"
)

// Service provides business logic for the Item catalog.
// Composes domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Item]
	repo Repository
}

// NewService creates a new Item service.
func NewService(repo Repository, txManager tx.Manager, notifier domain.ChangeNotifier) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  txManager,
		Notifier:   notifier,
		EntityName: "item",
		SyncTable:  "items",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkCodeUnique)
	base.Hooks().On(domain.BeforeUpdate, svc.checkCodeUnique)

	return svc
}

// checkCodeUnique rejects a duplicate item code within the firm.
func (s *Service) checkCodeUnique(ctx context.Context, it *Item) error {
	if it.ItemCode == nil || *it.ItemCode == "" {
		return nil
	}
	result, err := s.repo.List(ctx, it.FirmID, domain.ListFilter{Search: *it.ItemCode, Limit: 10})
	if err != nil {
		return err
	}
	for _, other := range result.Items {
		if other.ItemCode != nil && *other.ItemCode == *it.ItemCode && other.ID != it.ID {
			return apperror.NewDuplicate("item", "item_code", *it.ItemCode)
		}
	}
	return nil
}

// GetStock returns the item's current stock fields.
func (s *Service) GetStock(ctx context.Context, firmID, itemID id.ID) (*Item, error) {
	return s.GetByID(ctx, firmID, itemID)
}
