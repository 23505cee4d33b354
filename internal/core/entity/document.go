package entity

import "strings"

// DocumentType identifies the business document kind.
// The type drives every ledger effect: which registers a document
// touches and in which direction.
type DocumentType string

const (
	DocTypeSaleInvoice     DocumentType = "sale_invoice"
	DocTypeSaleOrder       DocumentType = "sale_order"
	DocTypeSaleReturn      DocumentType = "sale_return"
	DocTypeSaleQuotation   DocumentType = "sale_quotation"
	DocTypeDeliveryChallan DocumentType = "delivery_challan"
	DocTypePurchaseInvoice DocumentType = "purchase_invoice"
	DocTypePurchaseOrder   DocumentType = "purchase_order"
	DocTypePurchaseReturn  DocumentType = "purchase_return"

	// Plain sale and purchase are not accepted on write anymore, but
	// rows carrying them still exist and the ledgers must resolve them.
	DocTypeSale     DocumentType = "sale"
	DocTypePurchase DocumentType = "purchase"
)

// documentTypes is the closed set accepted on write.
var documentTypes = map[DocumentType]bool{
	DocTypeSaleInvoice:     true,
	DocTypeSaleOrder:       true,
	DocTypeSaleReturn:      true,
	DocTypeSaleQuotation:   true,
	DocTypeDeliveryChallan: true,
	DocTypePurchaseInvoice: true,
	DocTypePurchaseOrder:   true,
	DocTypePurchaseReturn:  true,
}

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	return documentTypes[t]
}

// stockChangeTypes lists document types that move stock at all.
// Orders and quotations never touch the stock ledger.
var stockChangeTypes = map[DocumentType]bool{
	DocTypePurchaseInvoice: true,
	DocTypePurchaseReturn:  true,
	DocTypeSale:            true,
	DocTypeSaleReturn:      true,
	DocTypeSaleInvoice:     true,
	DocTypeDeliveryChallan: true,
}

// AffectsStock reports whether documents of this type move stock.
func (t DocumentType) AffectsStock() bool {
	return stockChangeTypes[t]
}

// stockDecreaseTypes lists types whose stock effect is an outflow.
// Everything else in stockChangeTypes is an inflow.
var stockDecreaseTypes = map[DocumentType]bool{
	DocTypeSale:            true,
	DocTypeSaleInvoice:     true,
	DocTypePurchaseReturn:  true,
	DocTypeDeliveryChallan: true,
}

// DecreasesStock reports whether the stock effect of this type is an outflow.
func (t DocumentType) DecreasesStock() bool {
	return stockDecreaseTypes[t]
}

// PartyRole resolves how a document of this type treats its party
// for the balance ledger. ok=false means the type has no party effect.
// asCustomer=true means the party owes the firm after the document
// (sales); false means the firm owes the party (purchases). Returns
// are inverted: a sale return puts the firm in debt, a purchase
// return puts the party in debt.
func (t DocumentType) PartyRole() (asCustomer bool, ok bool) {
	switch t {
	case DocTypeSale, DocTypeSaleInvoice:
		return true, true
	case DocTypeSaleReturn:
		return false, true
	case DocTypePurchase, DocTypePurchaseInvoice:
		return false, true
	case DocTypePurchaseReturn:
		return true, true
	default:
		return false, false
	}
}

// IsSaleFamily reports whether the bank ledger treats this type as inflow.
// Covers sale plus every sale_* subtype.
func (t DocumentType) IsSaleFamily() bool {
	return t == DocTypeSale || strings.HasPrefix(string(t), "sale_")
}

// IsPurchaseFamily reports whether the bank ledger treats this type as
// outflow. Only purchase_* subtypes qualify: a plain purchase order has
// no bank effect.
func (t DocumentType) IsPurchaseFamily() bool {
	return strings.HasPrefix(string(t), "purchase_")
}

// PaymentMethod identifies how money changed hands.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCheque PaymentMethod = "cheque"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodOnline PaymentMethod = "online"
)

// IsValid reports whether m is a known payment method. Only the bank
// method moves the bank ledger; upi and online are recorded as-is.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBank,
		PaymentMethodUPI, PaymentMethodOnline:
		return true
	}
	return false
}

// PaymentDirection marks standalone payments as money in or money out.
type PaymentDirection string

const (
	PaymentIn  PaymentDirection = "in"
	PaymentOut PaymentDirection = "out"
)

// IsValid reports whether d is a known payment direction.
func (d PaymentDirection) IsValid() bool {
	return d == PaymentIn || d == PaymentOut
}
