package party

import (
	"context"

	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain"
)

// Repository defines the interface for Party persistence.
type Repository interface {
	domain.CatalogRepository[*Party]

	// UpdateBalance writes a new balance magnitude and type.
	UpdateBalance(ctx context.Context, firmID, partyID id.ID, balance types.Money, balanceType entity.BalanceType) error
}
