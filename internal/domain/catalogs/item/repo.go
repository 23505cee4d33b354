package item

import (
	"context"

	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	domain.CatalogRepository[*Item]

	// UpdateQuantities writes new stock quantities for an item.
	// touchSecondary=false leaves the secondary column untouched
	// (primary-unit-only items).
	UpdateQuantities(ctx context.Context, firmID, itemID id.ID, primary, secondary types.Quantity, touchSecondary bool) error
}
