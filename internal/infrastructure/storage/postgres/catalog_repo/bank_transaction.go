package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"khata/internal/core/id"
	"khata/internal/domain/catalogs/bankaccount"
	"khata/internal/infrastructure/storage/postgres"
)

// BankTransactionRepo is the PostgreSQL implementation of
// bankaccount.TransactionRepository.
type BankTransactionRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// NewBankTransactionRepo creates a bank transaction repository.
func NewBankTransactionRepo(txManager *postgres.TxManager) *BankTransactionRepo {
	return &BankTransactionRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[bankaccount.BankTransaction](),
	}
}

var _ bankaccount.TransactionRepository = (*BankTransactionRepo)(nil)

func (r *BankTransactionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a transaction row.
func (r *BankTransactionRepo) Create(ctx context.Context, transaction *bankaccount.BankTransaction) error {
	data := postgres.StructToMap(transaction)

	filteredData := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	sql, args, err := r.builder().
		Insert("bank_transactions").
		SetMap(filteredData).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert bank_transactions: %w", err)
	}
	return nil
}

// ListByAccount returns an account's transactions, newest first.
func (r *BankTransactionRepo) ListByAccount(ctx context.Context, firmID, accountID id.ID) ([]*bankaccount.BankTransaction, error) {
	return r.list(ctx, squirrel.Eq{"firm_id": firmID, "bank_account_id": accountID})
}

// List returns all firm transactions, newest first.
func (r *BankTransactionRepo) List(ctx context.Context, firmID id.ID) ([]*bankaccount.BankTransaction, error) {
	return r.list(ctx, squirrel.Eq{"firm_id": firmID})
}

func (r *BankTransactionRepo) list(ctx context.Context, where squirrel.Eq) ([]*bankaccount.BankTransaction, error) {
	sql, args, err := r.builder().
		Select(r.cols...).
		From("bank_transactions").
		Where(where).
		OrderBy("transaction_date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transactions []*bankaccount.BankTransaction
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &transactions, sql, args...); err != nil {
		return nil, fmt.Errorf("list bank_transactions: %w", err)
	}
	return transactions, nil
}

// DeleteByAccount removes all transactions of an account.
func (r *BankTransactionRepo) DeleteByAccount(ctx context.Context, firmID, accountID id.ID) error {
	sql, args, err := r.builder().
		Delete("bank_transactions").
		Where(squirrel.Eq{"firm_id": firmID, "bank_account_id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete bank_transactions: %w", err)
	}
	return nil
}
