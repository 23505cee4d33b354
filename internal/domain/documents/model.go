// Package documents provides the commercial document lifecycle: creation,
// amendment, and deletion of invoices, returns, challans, orders and
// quotations, with their ledger side effects.
package documents

import (
	"context"
	"time"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/registers/bankbalance"
	"khata/internal/domain/registers/partybalance"
	"khata/internal/domain/registers/stock"
)

// DocumentStatus tracks the document's workflow state. Ledger effects do
// not depend on it: a draft invoice moves stock the same as a final one.
type DocumentStatus string

const (
	StatusDraft DocumentStatus = "draft"
	StatusFinal DocumentStatus = "final"
)

// Document represents a commercial document with its child collections.
type Document struct {
	entity.BaseEntity

	DocumentType   entity.DocumentType `db:"document_type" json:"documentType"`
	DocumentNumber string              `db:"document_number" json:"documentNumber"`
	DocumentDate   time.Time           `db:"document_date" json:"documentDate"`
	Status         DocumentStatus      `db:"status" json:"status"`

	// Party
	PartyID   *id.ID  `db:"party_id" json:"partyId,omitempty"`
	PartyName string  `db:"party_name" json:"partyName"`
	PartyType string  `db:"party_type" json:"partyType"`
	Phone     *string `db:"phone" json:"phone,omitempty"`

	// Money
	TransactionType    string               `db:"transaction_type" json:"transactionType"`
	PaymentMethod      entity.PaymentMethod `db:"payment_method" json:"paymentMethod"`
	BankAccountID      *id.ID               `db:"bank_account_id" json:"bankAccountId,omitempty"`
	ChequeNumber       *string              `db:"cheque_number" json:"chequeNumber,omitempty"`
	ChequeDate         *time.Time           `db:"cheque_date" json:"chequeDate,omitempty"`
	Total              types.Money          `db:"total" json:"total"`
	PaidAmount         types.Money          `db:"paid_amount" json:"paidAmount"`
	BalanceAmount      types.Money          `db:"balance_amount" json:"balanceAmount"`
	RoundOff           types.Money          `db:"round_off" json:"roundOff"`
	DiscountAmount     *types.Money         `db:"discount_amount" json:"discountAmount,omitempty"`
	DiscountPercentage *types.Money         `db:"discount_percentage" json:"discountPercentage,omitempty"`
	TaxAmount          *types.Money         `db:"tax_amount" json:"taxAmount,omitempty"`

	// Addresses and references
	BillingAddress  *string `db:"billing_address" json:"billingAddress,omitempty"`
	ShippingAddress *string `db:"shipping_address" json:"shippingAddress,omitempty"`
	PONumber        *string `db:"po_number" json:"poNumber,omitempty"`
	Description     *string `db:"description" json:"description,omitempty"`

	// Children (loaded and replaced as one unit with the document)
	Items          []DocumentItem        `db:"-" json:"items"`
	Charges        []DocumentCharge      `db:"-" json:"charges,omitempty"`
	Transportation []TransportationEntry `db:"-" json:"transportation,omitempty"`
}

// DocumentItem is one line of a document. Quantities and the conversion
// rate are snapshots of the transaction as recorded, independent of the
// item's live configuration.
type DocumentItem struct {
	ID         id.ID `db:"id" json:"id"`
	FirmID     id.ID `db:"firm_id" json:"firmId"`
	DocumentID id.ID `db:"document_id" json:"documentId"`

	ItemID   id.ID   `db:"item_id" json:"itemId"`
	ItemName string  `db:"item_name" json:"itemName"`
	HSNCode  *string `db:"hsn_code" json:"hsnCode,omitempty"`

	PrimaryQuantity   types.Quantity `db:"primary_quantity" json:"primaryQuantity"`
	PrimaryUnitID     *id.ID         `db:"primary_unit_id" json:"primaryUnitId,omitempty"`
	PrimaryUnitName   *string        `db:"primary_unit_name" json:"primaryUnitName,omitempty"`
	SecondaryQuantity types.Quantity `db:"secondary_quantity" json:"secondaryQuantity"`
	SecondaryUnitID   *id.ID         `db:"secondary_unit_id" json:"secondaryUnitId,omitempty"`
	SecondaryUnitName *string        `db:"secondary_unit_name" json:"secondaryUnitName,omitempty"`
	UnitConversionID  *id.ID         `db:"unit_conversion_id" json:"unitConversionId,omitempty"`
	ConversionRate    types.Quantity `db:"conversion_rate" json:"conversionRate"`

	PricePerUnit    types.Money  `db:"price_per_unit" json:"pricePerUnit"`
	Amount          types.Money  `db:"amount" json:"amount"`
	TaxRate         *types.Money `db:"tax_rate" json:"taxRate,omitempty"`
	TaxAmount       *types.Money `db:"tax_amount" json:"taxAmount,omitempty"`
	DiscountPercent *types.Money `db:"discount_percent" json:"discountPercent,omitempty"`
	DiscountAmount  *types.Money `db:"discount_amount" json:"discountAmount,omitempty"`
}

// DocumentCharge is an additional named charge on a document.
type DocumentCharge struct {
	ID         id.ID       `db:"id" json:"id"`
	FirmID     id.ID       `db:"firm_id" json:"firmId"`
	DocumentID id.ID       `db:"document_id" json:"documentId"`
	Name       string      `db:"name" json:"name"`
	Amount     types.Money `db:"amount" json:"amount"`
}

// TransportationEntry carries delivery details attached to a document.
type TransportationEntry struct {
	ID               id.ID      `db:"id" json:"id"`
	FirmID           id.ID      `db:"firm_id" json:"firmId"`
	DocumentID       id.ID      `db:"document_id" json:"documentId"`
	TransportName    *string    `db:"transport_name" json:"transportName,omitempty"`
	VehicleNumber    *string    `db:"vehicle_number" json:"vehicleNumber,omitempty"`
	DeliveryDate     *time.Time `db:"delivery_date" json:"deliveryDate,omitempty"`
	DeliveryLocation *string    `db:"delivery_location" json:"deliveryLocation,omitempty"`
}

// Validate implements entity.Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if !d.DocumentType.IsValid() {
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "documentType").
			WithDetail("value", string(d.DocumentType))
	}
	if d.DocumentDate.IsZero() {
		return apperror.NewValidation("document date is required").
			WithDetail("field", "documentDate")
	}
	if d.PartyName == "" {
		return apperror.NewValidation("party name is required").
			WithDetail("field", "partyName")
	}
	if d.TransactionType == "" {
		return apperror.NewValidation("transaction type is required").
			WithDetail("field", "transactionType")
	}
	if d.PaymentMethod != "" && !d.PaymentMethod.IsValid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(d.PaymentMethod))
	}
	return nil
}

// StockLines maps the document's items into stock register input.
func (d *Document) StockLines() []stock.Line {
	lines := make([]stock.Line, 0, len(d.Items))
	for _, it := range d.Items {
		lines = append(lines, stock.Line{
			ItemID:            it.ItemID,
			PrimaryQuantity:   it.PrimaryQuantity,
			SecondaryQuantity: it.SecondaryQuantity,
			SecondaryUnitID:   it.SecondaryUnitID,
			UnitConversionID:  it.UnitConversionID,
			ConversionRate:    it.ConversionRate,
		})
	}
	return lines
}

// PartyEffect maps the document into party balance register input.
func (d *Document) PartyEffect() partybalance.DocumentEffect {
	return partybalance.DocumentEffect{
		PartyID: d.PartyID,
		Type:    d.DocumentType,
		Total:   d.Total,
		Paid:    d.PaidAmount,
	}
}

// BankEffect maps the document into bank balance register input.
func (d *Document) BankEffect() bankbalance.DocumentEffect {
	return bankbalance.DocumentEffect{
		BankAccountID: d.BankAccountID,
		PaymentMethod: d.PaymentMethod,
		Type:          d.DocumentType,
		Paid:          d.PaidAmount,
	}
}
