package bankaccount

import (
	"context"
	"fmt"

	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/tx"
	"khata/internal/domain"
	"khata/pkg/logger"
)

// Service provides business logic for the BankAccount catalog and its
// directly recorded transactions.
type Service struct {
	*domain.CatalogService[*BankAccount]
	repo      Repository
	txRepo    TransactionRepository
	txManager tx.Manager
	notifier  domain.ChangeNotifier
}

// NewService creates a new BankAccount service.
func NewService(repo Repository, txRepo TransactionRepository, txManager tx.Manager, notifier domain.ChangeNotifier) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*BankAccount]{
		Repo:       repo,
		TxManager:  txManager,
		Notifier:   notifier,
		EntityName: "bank account",
		SyncTable:  "bank_accounts",
	})

	if notifier == nil {
		notifier = domain.NopNotifier{}
	}

	return &Service{
		CatalogService: base,
		repo:           repo,
		txRepo:         txRepo,
		txManager:      txManager,
		notifier:       notifier,
	}
}

// CreateTransaction records a bank transaction and adjusts the account
// balance, atomically.
func (s *Service) CreateTransaction(ctx context.Context, transaction *BankTransaction) (*BankTransaction, error) {
	if err := transaction.Validate(ctx); err != nil {
		return nil, err
	}
	if id.IsNil(transaction.ID) {
		transaction.BaseEntity = entity.NewBaseEntity(transaction.FirmID)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		account, err := s.repo.GetByID(ctx, transaction.FirmID, transaction.BankAccountID)
		if err != nil {
			return err
		}
		if err := s.txRepo.Create(ctx, transaction); err != nil {
			return fmt.Errorf("insert bank transaction: %w", err)
		}
		newBalance := account.CurrentBalance.Add(transaction.SignedAmount())
		return s.repo.UpdateBalance(ctx, transaction.FirmID, transaction.BankAccountID, newBalance)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bank transaction created",
		"transaction_id", transaction.ID,
		"bank_account_id", transaction.BankAccountID,
		"type", transaction.Type,
	)
	s.notifier.NotifyChange(ctx, transaction.FirmID, "bank_transactions")

	return transaction, nil
}

// ListTransactions returns an account's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, firmID, accountID id.ID) ([]*BankTransaction, error) {
	return s.txRepo.ListByAccount(ctx, firmID, accountID)
}

// ListAllTransactions returns all firm transactions, newest first.
func (s *Service) ListAllTransactions(ctx context.Context, firmID id.ID) ([]*BankTransaction, error) {
	return s.txRepo.List(ctx, firmID)
}

// Delete removes the account together with its transactions, atomically.
// Overrides the plain catalog delete.
func (s *Service) Delete(ctx context.Context, firmID, accountID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.txRepo.DeleteByAccount(ctx, firmID, accountID); err != nil {
			return fmt.Errorf("delete account transactions: %w", err)
		}
		return s.repo.Delete(ctx, firmID, accountID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "bank account deleted", "bank_account_id", accountID)
	s.notifier.NotifyChange(ctx, firmID, "bank_accounts")

	return nil
}
