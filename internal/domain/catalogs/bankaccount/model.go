// Package bankaccount provides the Bank Account catalog. The running
// balance is signed and may go negative (overdraft or unreconciled debt);
// it is mutated exclusively by the bank balance register.
package bankaccount

import (
	"context"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
)

// BankAccount represents one of the firm's bank accounts.
type BankAccount struct {
	entity.BaseEntity

	// Name is the display name
	Name string `db:"name" json:"name"`

	AccountNumber *string `db:"account_number" json:"accountNumber,omitempty"`
	BankName      *string `db:"bank_name" json:"bankName,omitempty"`
	IFSCCode      *string `db:"ifsc_code" json:"ifscCode,omitempty"`
	AccountHolder *string `db:"account_holder" json:"accountHolder,omitempty"`

	// CurrentBalance is signed; negative balances are allowed
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
}

// NewBankAccount creates a new BankAccount with a zero balance.
func NewBankAccount(firmID id.ID, name string) *BankAccount {
	return &BankAccount{
		BaseEntity:     entity.NewBaseEntity(firmID),
		Name:           name,
		CurrentBalance: types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (a *BankAccount) Validate(ctx context.Context) error {
	if a.Name == "" {
		return apperror.NewValidation("bank account name is required").
			WithDetail("field", "name")
	}
	return nil
}
