package payments

import (
	"context"
	"fmt"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/feature"
	"khata/internal/core/id"
	"khata/internal/core/tx"
	"khata/internal/domain"
	"khata/internal/domain/registers/bankbalance"
	"khata/internal/domain/registers/partybalance"
	"khata/pkg/logger"
)

// Service coordinates the standalone payment lifecycle. Mutations run
// inside one transaction; the bank ledger is touched before the party
// ledger on every pass.
type Service struct {
	repo      Repository
	party     *partybalance.Service
	bank      *bankbalance.Service
	txManager tx.Manager
	flags     feature.FlagProvider
	notifier  domain.ChangeNotifier
}

// NewService creates a new payment lifecycle service.
func NewService(
	repo Repository,
	partySvc *partybalance.Service,
	bankSvc *bankbalance.Service,
	txManager tx.Manager,
	flags feature.FlagProvider,
	notifier domain.ChangeNotifier,
) *Service {
	if flags == nil {
		flags = feature.NewInMemoryFlags()
	}
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}
	return &Service{
		repo:      repo,
		party:     partySvc,
		bank:      bankSvc,
		txManager: txManager,
		flags:     flags,
		notifier:  notifier,
	}
}

// Create validates and inserts a payment, applying its bank and party
// effects forward. A bank payment against a missing account is a
// validation-stage failure: nothing is persisted.
func (s *Service) Create(ctx context.Context, payment *Payment) (*Payment, error) {
	if err := payment.Validate(ctx); err != nil {
		return nil, err
	}
	if id.IsNil(payment.ID) {
		payment.BaseEntity = entity.NewBaseEntity(payment.FirmID)
	}
	payment.IsReconciled = false

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if payment.UsesBank() {
			if err := s.bank.ApplyPayment(ctx, payment.FirmID, *payment.BankAccountID, payment.Direction, payment.Amount, false); err != nil {
				return err
			}
		}
		if err := s.repo.Create(ctx, payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		if payment.HasParty() {
			if err := s.party.ApplyPayment(ctx, payment.FirmID, *payment.PartyID, payment.Direction, payment.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment created",
		"payment_id", payment.ID,
		"direction", payment.Direction,
		"amount", payment.Amount,
	)
	s.notifier.NotifyChange(ctx, payment.FirmID, "payments")

	return payment, nil
}

// Update amends a payment. The old bank effect is reverted and the new
// one applied; the party ledger is deliberately left untouched unless
// the corrected mode flag is on — the historical behavior never
// reverted the party side on update, and that stays the default.
func (s *Service) Update(ctx context.Context, firmID, paymentID id.ID, updated *Payment) (*Payment, error) {
	existing, err := s.repo.GetByID(ctx, firmID, paymentID)
	if err != nil {
		return nil, err
	}

	updated.ID = paymentID
	updated.FirmID = firmID
	updated.CreatedAt = existing.CreatedAt
	if err := updated.Validate(ctx); err != nil {
		return nil, err
	}
	updated.Touch()

	revertParty := s.flags.IsEnabled(ctx, feature.FlagPaymentPartyReversal)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing.UsesBank() {
			if err := s.bank.ApplyPayment(ctx, firmID, *existing.BankAccountID, existing.Direction, existing.Amount, true); err != nil && !apperror.IsNotFound(err) {
				return err
			}
		}
		if revertParty && existing.HasParty() {
			if err := s.party.RevertPayment(ctx, firmID, *existing.PartyID, existing.Direction, existing.Amount); err != nil {
				return err
			}
		}

		if updated.UsesBank() {
			if err := s.bank.ApplyPayment(ctx, firmID, *updated.BankAccountID, updated.Direction, updated.Amount, false); err != nil {
				return err
			}
		}
		if revertParty && updated.HasParty() {
			if err := s.party.ApplyPayment(ctx, firmID, *updated.PartyID, updated.Direction, updated.Amount); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, updated); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment updated",
		"payment_id", paymentID,
		"party_reverted", revertParty,
	)
	s.notifier.NotifyChange(ctx, firmID, "payments")

	return updated, nil
}

// Delete reverts the payment's bank and party effects and removes the
// row, atomically. A missing bank account is tolerated on this path.
func (s *Service) Delete(ctx context.Context, firmID, paymentID id.ID) error {
	payment, err := s.repo.GetByID(ctx, firmID, paymentID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if payment.UsesBank() {
			if err := s.bank.ApplyPayment(ctx, firmID, *payment.BankAccountID, payment.Direction, payment.Amount, true); err != nil && !apperror.IsNotFound(err) {
				return err
			}
		}
		if payment.HasParty() {
			if err := s.party.RevertPayment(ctx, firmID, *payment.PartyID, payment.Direction, payment.Amount); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, firmID, paymentID); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "payment deleted", "payment_id", paymentID)
	s.notifier.NotifyChange(ctx, firmID, "payments")

	return nil
}

// GetByID loads a payment.
func (s *Service) GetByID(ctx context.Context, firmID, paymentID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, firmID, paymentID)
}

// List returns payments matching the filter.
func (s *Service) List(ctx context.Context, firmID id.ID, filter ListFilter) ([]*Payment, error) {
	return s.repo.List(ctx, firmID, filter)
}
