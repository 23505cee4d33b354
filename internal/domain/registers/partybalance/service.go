// Package partybalance provides the party balance ledger.
//
// A party balance is stored as a non-negative magnitude plus a type flag
// (to_pay: the firm owes the party; to_receive: the party owes the firm).
// Deltas reduce the balance while it sits on the "wrong" side and flip
// the flag with the crossing remainder when they overshoot zero.
package partybalance

import (
	"context"

	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/pkg/logger"
)

// Balance is a party's net position.
type Balance struct {
	Amount types.Money        `db:"current_balance"`
	Type   entity.BalanceType `db:"current_balance_type"`
}

// Repository defines persistence operations for the party balance ledger.
type Repository interface {
	// GetBalance reads the current balance for a party within the firm.
	// Returns apperror.CodeNotFound when the party does not exist.
	GetBalance(ctx context.Context, firmID, partyID id.ID) (Balance, error)

	// UpdateBalance writes a new balance pair.
	UpdateBalance(ctx context.Context, firmID, partyID id.ID, balance Balance) error
}

// DocumentEffect is the slice of a document the ledger reads.
type DocumentEffect struct {
	PartyID *id.ID
	Type    entity.DocumentType
	Total   types.Money
	Paid    types.Money
}

// Service applies crossing-zero balance deltas.
type Service struct {
	repo Repository
}

// NewService creates a new party balance service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// applyCrossing folds amount into the balance. While the balance type
// equals reduceType the amount pays the existing position down; if it
// overshoots, the type flips and the balance becomes the crossing
// remainder. On the other side the amount simply accumulates.
func applyCrossing(current Balance, amount types.Money, reduceType entity.BalanceType) Balance {
	if current.Type == reduceType {
		if current.Amount.GreaterThanOrEqual(amount) {
			current.Amount = current.Amount.Sub(amount)
			return current
		}
		current.Amount = amount.Sub(current.Amount)
		if reduceType == entity.BalanceToPay {
			current.Type = entity.BalanceToReceive
		} else {
			current.Type = entity.BalanceToPay
		}
		return current
	}
	current.Amount = current.Amount.Add(amount)
	return current
}

// ApplyDocument folds a document's unpaid remainder into its party's
// balance. No-op when the document has no party, when total-paid is
// exactly zero, or when the type has no party effect. reverse inverts
// the role resolved from the document type.
func (s *Service) ApplyDocument(ctx context.Context, firmID id.ID, eff DocumentEffect, reverse bool) error {
	if eff.PartyID == nil || id.IsNil(*eff.PartyID) {
		return nil
	}

	balanceAmount := eff.Total.Sub(eff.Paid)
	if balanceAmount.IsZero() {
		return nil // fully settled
	}

	asCustomer, ok := eff.Type.PartyRole()
	if !ok {
		return nil
	}
	if reverse {
		asCustomer = !asCustomer
	}

	current, err := s.repo.GetBalance(ctx, firmID, *eff.PartyID)
	if err != nil {
		logger.Warn(ctx, "party lookup failed, skipping balance update",
			"party_id", *eff.PartyID,
			"error", err,
		)
		return nil
	}

	// A customer-side effect pays down what the firm owes (to_pay);
	// a supplier-side effect pays down what the firm is owed.
	reduceType := entity.BalanceToReceive
	if asCustomer {
		reduceType = entity.BalanceToPay
	}
	updated := applyCrossing(current, balanceAmount, reduceType)

	return s.repo.UpdateBalance(ctx, firmID, *eff.PartyID, updated)
}

// ApplyPayment folds a standalone payment into the party's balance using
// the same crossing rule, driven by direction instead of document type:
// money in pays down a to_receive position, money out pays down to_pay.
func (s *Service) ApplyPayment(ctx context.Context, firmID, partyID id.ID, direction entity.PaymentDirection, amount types.Money) error {
	current, err := s.repo.GetBalance(ctx, firmID, partyID)
	if err != nil {
		logger.Warn(ctx, "party lookup failed, skipping balance update",
			"party_id", partyID,
			"error", err,
		)
		return nil
	}

	reduceType := entity.BalanceToPay
	if direction == entity.PaymentIn {
		reduceType = entity.BalanceToReceive
	}
	updated := applyCrossing(current, amount, reduceType)

	return s.repo.UpdateBalance(ctx, firmID, partyID, updated)
}

// RevertPayment adds a deleted payment's amount back into the balance.
// The type flag never flips here; the result is clamped to a
// non-negative magnitude. This mirrors the recorded delete behavior.
func (s *Service) RevertPayment(ctx context.Context, firmID, partyID id.ID, direction entity.PaymentDirection, amount types.Money) error {
	current, err := s.repo.GetBalance(ctx, firmID, partyID)
	if err != nil {
		logger.Warn(ctx, "party lookup failed, skipping balance revert",
			"party_id", partyID,
			"error", err,
		)
		return nil
	}

	addBack := current.Type == entity.BalanceToPay
	if direction == entity.PaymentIn {
		addBack = current.Type == entity.BalanceToReceive
	}

	if addBack {
		current.Amount = current.Amount.Add(amount)
	} else {
		current.Amount = current.Amount.Sub(amount)
	}
	current.Amount = current.Amount.Abs()

	return s.repo.UpdateBalance(ctx, firmID, partyID, current)
}
