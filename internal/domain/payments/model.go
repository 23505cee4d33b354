// Package payments provides standalone payment lifecycle: money in or
// out that is not a document, mutating the party and bank ledgers
// directly.
package payments

import (
	"context"
	"time"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
)

// Payment represents a standalone receipt or disbursement. It may point
// at a document for display, but ledger effects are computed only from
// the payment's own fields.
type Payment struct {
	entity.BaseEntity

	Amount        types.Money             `db:"amount" json:"amount"`
	PaymentMethod entity.PaymentMethod    `db:"payment_method" json:"paymentMethod"`
	PaymentDate   time.Time               `db:"payment_date" json:"paymentDate"`
	Direction     entity.PaymentDirection `db:"direction" json:"direction"`

	PartyID   *id.ID  `db:"party_id" json:"partyId,omitempty"`
	PartyName *string `db:"party_name" json:"partyName,omitempty"`

	BankAccountID *id.ID     `db:"bank_account_id" json:"bankAccountId,omitempty"`
	ChequeNumber  *string    `db:"cheque_number" json:"chequeNumber,omitempty"`
	ChequeDate    *time.Time `db:"cheque_date" json:"chequeDate,omitempty"`

	ReferenceNumber *string `db:"reference_number" json:"referenceNumber,omitempty"`
	ReceiptNumber   *string `db:"receipt_number" json:"receiptNumber,omitempty"`
	Description     *string `db:"description" json:"description,omitempty"`
	ImageURL        *string `db:"image_url" json:"imageUrl,omitempty"`

	LinkedDocumentID   *id.ID  `db:"linked_document_id" json:"linkedDocumentId,omitempty"`
	LinkedDocumentType *string `db:"linked_document_type" json:"linkedDocumentType,omitempty"`

	IsReconciled bool `db:"is_reconciled" json:"isReconciled"`
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be greater than zero").
			WithDetail("field", "amount")
	}
	if !p.PaymentMethod.IsValid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(p.PaymentMethod))
	}
	if p.PaymentDate.IsZero() {
		return apperror.NewValidation("payment date is required").
			WithDetail("field", "paymentDate")
	}
	if !p.Direction.IsValid() {
		return apperror.NewValidation("invalid payment direction").
			WithDetail("field", "direction").
			WithDetail("value", string(p.Direction))
	}
	if p.PaymentMethod == entity.PaymentMethodBank &&
		(p.BankAccountID == nil || id.IsNil(*p.BankAccountID)) {
		return apperror.NewValidation("bank account is required for bank payments").
			WithDetail("field", "bankAccountId")
	}
	if p.PaymentMethod == entity.PaymentMethodCheque &&
		(p.ChequeNumber == nil || *p.ChequeNumber == "" || p.ChequeDate == nil) {
		return apperror.NewValidation("cheque details are required for cheque payments").
			WithDetail("field", "chequeNumber")
	}
	return nil
}

// UsesBank reports whether the payment touches the bank ledger.
func (p *Payment) UsesBank() bool {
	return p.PaymentMethod == entity.PaymentMethodBank &&
		p.BankAccountID != nil && !id.IsNil(*p.BankAccountID)
}

// HasParty reports whether the payment touches the party ledger.
func (p *Payment) HasParty() bool {
	return p.PartyID != nil && !id.IsNil(*p.PartyID)
}
