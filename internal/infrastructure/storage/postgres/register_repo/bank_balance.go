package register_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/registers/bankbalance"
	"khata/internal/infrastructure/storage/postgres"
)

// BankBalanceRepo implements bankbalance.Repository over the balance
// column of the bank_accounts table.
type BankBalanceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewBankBalanceRepo creates a bank balance register repository.
func NewBankBalanceRepo(txManager *postgres.TxManager) *BankBalanceRepo {
	return &BankBalanceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ bankbalance.Repository = (*BankBalanceRepo)(nil)

// GetBalance reads the account's signed balance, locking the row when
// inside a transaction.
func (r *BankBalanceRepo) GetBalance(ctx context.Context, firmID, accountID id.ID) (types.Money, error) {
	q := r.builder.
		Select("current_balance").
		From("bank_accounts").
		Where(squirrel.Eq{"id": accountID, "firm_id": firmID})
	if r.txManager.GetTx(ctx) != nil {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var balance types.Money
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), apperror.NewNotFound("bank account", accountID.String())
		}
		return types.Zero(), fmt.Errorf("get bank balance: %w", err)
	}

	return balance, nil
}

// UpdateBalance writes the account's signed balance.
func (r *BankBalanceRepo) UpdateBalance(ctx context.Context, firmID, accountID id.ID, balance types.Money) error {
	q := r.builder.
		Update("bank_accounts").
		Set("current_balance", balance).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": accountID, "firm_id": firmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update bank balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("bank account", accountID.String())
	}
	return nil
}
