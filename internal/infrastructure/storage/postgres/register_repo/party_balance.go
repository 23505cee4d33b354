package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/domain/registers/partybalance"
	"khata/internal/infrastructure/storage/postgres"
)

// PartyBalanceRepo implements partybalance.Repository over the balance
// columns of the parties table.
type PartyBalanceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPartyBalanceRepo creates a party balance register repository.
func NewPartyBalanceRepo(txManager *postgres.TxManager) *PartyBalanceRepo {
	return &PartyBalanceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ partybalance.Repository = (*PartyBalanceRepo)(nil)

// GetBalance reads the party's balance, locking the row when inside a
// transaction.
func (r *PartyBalanceRepo) GetBalance(ctx context.Context, firmID, partyID id.ID) (partybalance.Balance, error) {
	q := r.builder.
		Select("current_balance", "current_balance_type").
		From("parties").
		Where(squirrel.Eq{"id": partyID, "firm_id": firmID})
	if r.txManager.GetTx(ctx) != nil {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return partybalance.Balance{}, fmt.Errorf("build query: %w", err)
	}

	var b partybalance.Balance
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return partybalance.Balance{}, apperror.NewNotFound("party", partyID.String())
		}
		return partybalance.Balance{}, fmt.Errorf("get party balance: %w", err)
	}

	return b, nil
}

// UpdateBalance writes the party's balance magnitude and type.
func (r *PartyBalanceRepo) UpdateBalance(ctx context.Context, firmID, partyID id.ID, balance partybalance.Balance) error {
	q := r.builder.
		Update("parties").
		Set("current_balance", balance.Amount).
		Set("current_balance_type", balance.Type).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": partyID, "firm_id": firmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update party balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("party", partyID.String())
	}
	return nil
}
