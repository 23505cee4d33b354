package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/catalogs/bankaccount"
	"khata/internal/infrastructure/storage/postgres"
)

// BankAccountRepo is the PostgreSQL implementation of bankaccount.Repository.
type BankAccountRepo struct {
	*BaseCatalogRepo[*bankaccount.BankAccount]
}

// NewBankAccountRepo creates a bank account repository.
func NewBankAccountRepo(txManager *postgres.TxManager) *BankAccountRepo {
	return &BankAccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"bank_accounts",
			postgres.ExtractDBColumns[bankaccount.BankAccount](),
			[]string{"name", "account_number"},
			func() *bankaccount.BankAccount { return &bankaccount.BankAccount{} },
		),
	}
}

var _ bankaccount.Repository = (*BankAccountRepo)(nil)

// UpdateBalance writes a new signed balance.
func (r *BankAccountRepo) UpdateBalance(ctx context.Context, firmID, accountID id.ID, balance types.Money) error {
	q := r.Builder().
		Update("bank_accounts").
		Set("current_balance", balance).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": accountID, "firm_id": firmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update balance: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update bank account balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("bank account", accountID.String())
	}
	return nil
}
