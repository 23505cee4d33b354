package documents

import (
	"context"
	"fmt"
	"time"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/feature"
	"khata/internal/core/id"
	"khata/internal/core/tx"
	"khata/internal/domain"
	"khata/internal/domain/registers/bankbalance"
	"khata/internal/domain/registers/partybalance"
	"khata/internal/domain/registers/stock"
	"khata/pkg/logger"
)

// Service coordinates the document lifecycle. Every mutation runs the
// revert/reapply sequence and the row writes inside one transaction, and
// touches the ledgers in a fixed order: stock, then party, then bank.
type Service struct {
	repo      Repository
	stock     *stock.Service
	party     *partybalance.Service
	bank      *bankbalance.Service
	txManager tx.Manager
	flags     feature.FlagProvider
	notifier  domain.ChangeNotifier
}

// NewService creates a new document lifecycle service.
func NewService(
	repo Repository,
	stockSvc *stock.Service,
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
		stock:     stockSvc,
		party:     partySvc,
		bank:      bankSvc,
		txManager: txManager,
		flags:     flags,
		notifier:  notifier,
	}
}

// normalize fills generated identifiers and propagates firm/document
// references down to child rows.
func (s *Service) normalize(doc *Document) {
	if id.IsNil(doc.ID) {
		doc.BaseEntity = entity.NewBaseEntity(doc.FirmID)
	}
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.PaymentMethod == "" {
		doc.PaymentMethod = entity.PaymentMethodCash
	}
	doc.BalanceAmount = doc.Total.Sub(doc.PaidAmount)

	for i := range doc.Items {
		if id.IsNil(doc.Items[i].ID) {
			doc.Items[i].ID = id.New()
		}
		doc.Items[i].FirmID = doc.FirmID
		doc.Items[i].DocumentID = doc.ID
	}
	for i := range doc.Charges {
		if id.IsNil(doc.Charges[i].ID) {
			doc.Charges[i].ID = id.New()
		}
		doc.Charges[i].FirmID = doc.FirmID
		doc.Charges[i].DocumentID = doc.ID
	}
	for i := range doc.Transportation {
		if id.IsNil(doc.Transportation[i].ID) {
			doc.Transportation[i].ID = id.New()
		}
		doc.Transportation[i].FirmID = doc.FirmID
		doc.Transportation[i].DocumentID = doc.ID
	}
}

// applyLedgers runs the three ledgers in the fixed stock/party/bank order.
func (s *Service) applyLedgers(ctx context.Context, doc *Document, reverse bool) error {
	if err := s.stock.Apply(ctx, doc.FirmID, doc.ID, doc.DocumentType, doc.DocumentDate, doc.StockLines(), reverse); err != nil {
		return fmt.Errorf("stock ledger: %w", err)
	}
	if err := s.party.ApplyDocument(ctx, doc.FirmID, doc.PartyEffect(), reverse); err != nil {
		return fmt.Errorf("party ledger: %w", err)
	}
	if err := s.bank.ApplyDocument(ctx, doc.FirmID, doc.BankEffect(), reverse); err != nil {
		return fmt.Errorf("bank ledger: %w", err)
	}
	return nil
}

// Create inserts a document with its children and applies all three
// ledgers forward, atomically. Returns the enriched document.
func (s *Service) Create(ctx context.Context, doc *Document) (*Document, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	s.normalize(doc)
	if doc.DocumentNumber == "" {
		doc.DocumentNumber = fmt.Sprintf("DOC-%d", time.Now().UnixMilli())
	}

	exists, err := s.repo.ExistsByNumber(ctx, doc.FirmID, doc.DocumentType, doc.DocumentNumber, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewConflict("document number already exists").
			WithDetail("documentType", string(doc.DocumentType)).
			WithDetail("documentNumber", doc.DocumentNumber)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		return s.applyLedgers(ctx, doc, false)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document created",
		"document_id", doc.ID,
		"document_type", doc.DocumentType,
		"document_number", doc.DocumentNumber,
	)
	s.notifier.NotifyChange(ctx, doc.FirmID, "documents")

	return s.repo.GetByID(ctx, doc.FirmID, doc.ID)
}

// Update amends a document: the old state's stock and party effects are
// reverted, the row and child rows are replaced, and all three ledgers
// are applied forward from the new state — in one transaction.
//
// The bank ledger is only reverted when the corrected mode flag is on:
// the historical behavior applied the new bank effect on top of the old
// one, and that stays the default for compatibility.
func (s *Service) Update(ctx context.Context, firmID, docID id.ID, updated *Document) (*Document, error) {
	existing, err := s.repo.GetByID(ctx, firmID, docID)
	if err != nil {
		return nil, err
	}

	updated.ID = docID
	updated.FirmID = firmID
	updated.CreatedAt = existing.CreatedAt
	if err := updated.Validate(ctx); err != nil {
		return nil, err
	}
	s.normalize(updated)
	updated.Touch()

	if updated.DocumentNumber != existing.DocumentNumber || updated.DocumentType != existing.DocumentType {
		exists, err := s.repo.ExistsByNumber(ctx, firmID, updated.DocumentType, updated.DocumentNumber, &docID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.NewConflict("document number already exists").
				WithDetail("documentType", string(updated.DocumentType)).
				WithDetail("documentNumber", updated.DocumentNumber)
		}
	}

	revertBank := s.flags.IsEnabled(ctx, feature.FlagDocumentBankReversal)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.stock.Apply(ctx, firmID, docID, existing.DocumentType, existing.DocumentDate, existing.StockLines(), true); err != nil {
			return fmt.Errorf("revert stock ledger: %w", err)
		}
		if err := s.party.ApplyDocument(ctx, firmID, existing.PartyEffect(), true); err != nil {
			return fmt.Errorf("revert party ledger: %w", err)
		}
		if revertBank {
			if err := s.bank.ApplyDocument(ctx, firmID, existing.BankEffect(), true); err != nil {
				return fmt.Errorf("revert bank ledger: %w", err)
			}
		}

		if err := s.repo.Update(ctx, updated); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.ReplaceChildren(ctx, updated); err != nil {
			return fmt.Errorf("replace children: %w", err)
		}

		return s.applyLedgers(ctx, updated, false)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document updated",
		"document_id", docID,
		"document_type", updated.DocumentType,
		"bank_reverted", revertBank,
	)
	s.notifier.NotifyChange(ctx, firmID, "documents")

	return s.repo.GetByID(ctx, firmID, docID)
}

// Delete reverts all three ledgers from the document's recorded state
// and removes the document with its children, atomically.
func (s *Service) Delete(ctx context.Context, firmID, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, firmID, docID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.applyLedgers(ctx, doc, true); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, firmID, docID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document deleted",
		"document_id", docID,
		"document_type", doc.DocumentType,
	)
	s.notifier.NotifyChange(ctx, firmID, "documents")

	return nil
}

// GetByID loads a document with its children.
func (s *Service) GetByID(ctx context.Context, firmID, docID id.ID) (*Document, error) {
	return s.repo.GetByID(ctx, firmID, docID)
}

// List returns documents matching the filter.
func (s *Service) List(ctx context.Context, firmID id.ID, filter ListFilter) ([]*Document, error) {
	return s.repo.List(ctx, firmID, filter)
}
