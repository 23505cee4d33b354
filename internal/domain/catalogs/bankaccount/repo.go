package bankaccount

import (
	"context"

	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain"
)

// Repository defines the interface for BankAccount persistence.
type Repository interface {
	domain.CatalogRepository[*BankAccount]

	// UpdateBalance writes a new signed balance.
	UpdateBalance(ctx context.Context, firmID, accountID id.ID, balance types.Money) error
}
