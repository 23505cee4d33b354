package bankaccount

import (
	"context"
	"time"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
)

// TransactionType marks the direction of a bank transaction.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// BankTransaction is one movement on a bank account, recorded directly
// rather than through a document or payment.
type BankTransaction struct {
	entity.BaseEntity

	BankAccountID id.ID           `db:"bank_account_id" json:"bankAccountId"`
	Type          TransactionType `db:"type" json:"type"`
	Amount        types.Money     `db:"amount" json:"amount"`

	TransactionDate time.Time `db:"transaction_date" json:"transactionDate"`
	Description     *string   `db:"description" json:"description,omitempty"`
	ReferenceNumber *string   `db:"reference_number" json:"referenceNumber,omitempty"`
}

// Validate implements entity.Validatable.
func (t *BankTransaction) Validate(ctx context.Context) error {
	if id.IsNil(t.BankAccountID) {
		return apperror.NewValidation("bank account is required").
			WithDetail("field", "bankAccountId")
	}
	if t.Type != TransactionCredit && t.Type != TransactionDebit {
		return apperror.NewValidation("invalid transaction type").
			WithDetail("field", "type").
			WithDetail("value", string(t.Type))
	}
	if !t.Amount.IsPositive() {
		return apperror.NewValidation("amount must be greater than zero").
			WithDetail("field", "amount")
	}
	if t.TransactionDate.IsZero() {
		return apperror.NewValidation("transaction date is required").
			WithDetail("field", "transactionDate")
	}
	return nil
}

// SignedAmount returns the amount with direction applied.
func (t *BankTransaction) SignedAmount() types.Money {
	if t.Type == TransactionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionRepository defines persistence for bank transactions.
type TransactionRepository interface {
	// Create inserts a transaction row.
	Create(ctx context.Context, transaction *BankTransaction) error

	// ListByAccount returns an account's transactions, newest first.
	ListByAccount(ctx context.Context, firmID, accountID id.ID) ([]*BankTransaction, error)

	// List returns all firm transactions, newest first.
	List(ctx context.Context, firmID id.ID) ([]*BankTransaction, error)

	// DeleteByAccount removes all transactions of an account.
	DeleteByAccount(ctx context.Context, firmID, accountID id.ID) error
}
