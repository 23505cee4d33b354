// Package bankbalance provides the bank balance ledger.
//
// Bank balances are signed and may go negative. Only bank-medium
// mutations with a real paid amount touch this ledger.
package bankbalance

import (
	"context"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/pkg/logger"
)

// Repository defines persistence operations for the bank balance ledger.
type Repository interface {
	// GetBalance reads the current signed balance for an account.
	// Returns apperror.CodeNotFound when the account does not exist.
	GetBalance(ctx context.Context, firmID, accountID id.ID) (types.Money, error)

	// UpdateBalance writes a new signed balance.
	UpdateBalance(ctx context.Context, firmID, accountID id.ID, balance types.Money) error
}

// DocumentEffect is the slice of a document the ledger reads.
type DocumentEffect struct {
	BankAccountID *id.ID
	PaymentMethod entity.PaymentMethod
	Type          entity.DocumentType
	Paid          types.Money
}

// Service applies signed deltas to bank account balances.
type Service struct {
	repo Repository
}

// NewService creates a new bank balance service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ApplyDocument folds a document's paid amount into its bank account.
// No-op unless the payment medium is bank, an account is referenced,
// and the paid amount is non-zero. Sale-family types add, purchase
// subtypes subtract, and other types leave the balance alone; reverse
// flips the sign. A missing account is logged and skipped.
func (s *Service) ApplyDocument(ctx context.Context, firmID id.ID, eff DocumentEffect, reverse bool) error {
	if eff.PaymentMethod != entity.PaymentMethodBank || eff.BankAccountID == nil || id.IsNil(*eff.BankAccountID) {
		return nil
	}
	if eff.Paid.IsZero() {
		return nil
	}

	current, err := s.repo.GetBalance(ctx, firmID, *eff.BankAccountID)
	if err != nil {
		logger.Warn(ctx, "bank account lookup failed, skipping balance update",
			"bank_account_id", *eff.BankAccountID,
			"error", err,
		)
		return nil
	}

	var delta types.Money
	switch {
	case eff.Type.IsSaleFamily():
		delta = eff.Paid
	case eff.Type.IsPurchaseFamily():
		delta = eff.Paid.Neg()
	default:
		return nil
	}
	if reverse {
		delta = delta.Neg()
	}

	// No floor at zero: overdrafts are allowed.
	return s.repo.UpdateBalance(ctx, firmID, *eff.BankAccountID, current.Add(delta))
}

// ApplyPayment folds a standalone payment into a bank account: money in
// adds, money out subtracts; reverse flips the sign. A missing account
// surfaces as a not-found error so the caller can decide whether that
// aborts (create/update) or is tolerable (revert paths).
func (s *Service) ApplyPayment(ctx context.Context, firmID, accountID id.ID, direction entity.PaymentDirection, amount types.Money, reverse bool) error {
	current, err := s.repo.GetBalance(ctx, firmID, accountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.NewDatabase(err)
	}

	delta := amount
	if direction == entity.PaymentOut {
		delta = delta.Neg()
	}
	if reverse {
		delta = delta.Neg()
	}

	return s.repo.UpdateBalance(ctx, firmID, accountID, current.Add(delta))
}
