package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/catalogs/party"
	"khata/internal/infrastructure/storage/postgres"
)

// PartyRepo is the PostgreSQL implementation of party.Repository.
type PartyRepo struct {
	*BaseCatalogRepo[*party.Party]
}

// NewPartyRepo creates a party repository.
func NewPartyRepo(txManager *postgres.TxManager) *PartyRepo {
	return &PartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"parties",
			postgres.ExtractDBColumns[party.Party](),
			[]string{"name", "phone", "email"},
			func() *party.Party { return &party.Party{} },
		),
	}
}

var _ party.Repository = (*PartyRepo)(nil)

// UpdateBalance writes a new balance magnitude and type.
func (r *PartyRepo) UpdateBalance(ctx context.Context, firmID, partyID id.ID, balance types.Money, balanceType entity.BalanceType) error {
	q := r.Builder().
		Update("parties").
		Set("current_balance", balance).
		Set("current_balance_type", balanceType).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": partyID, "firm_id": firmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update balance: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update party balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("party", partyID.String())
	}
	return nil
}
