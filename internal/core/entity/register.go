package entity

import (
	"time"

	"khata/internal/core/id"
	"khata/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance
	RecordTypeExpense RecordType = "expense"
)

// BalanceType flags which side a party balance sits on.
// Balances are stored as a non-negative magnitude plus this flag.
type BalanceType string

const (
	// BalanceToPay means the firm owes the party
	BalanceToPay BalanceType = "to_pay"
	// BalanceToReceive means the party owes the firm
	BalanceToReceive BalanceType = "to_receive"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable: they are never updated, only deleted by
// recorder and recreated when the recorder is reapplied.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// FirmID scopes the movement to a single firm
	FirmID id.ID `db:"firm_id" json:"firmId"`

	// RecorderID is the document or payment that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the recorder's document type or "payment"
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// Period is the business date for the movement
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(firmID, recorderID id.ID, recorderType string, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:       id.New(),
		FirmID:       firmID,
		RecorderID:   recorderID,
		RecorderType: recorderType,
		Period:       period,
		RecordType:   recordType,
		CreatedAt:    time.Now().UTC(),
	}
}

// StockMovement represents one line of the stock accumulation register.
// Quantity is the composite total in primary-unit terms.
type StockMovement struct {
	MovementBase

	// Dimensions
	ItemID id.ID `db:"item_id" json:"itemId"`

	// Resources
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewStockMovement creates a new stock movement.
func NewStockMovement(
	firmID, recorderID id.ID,
	recorderType string,
	period time.Time,
	recordType RecordType,
	itemID id.ID,
	quantity types.Quantity,
) StockMovement {
	return StockMovement{
		MovementBase: NewMovementBase(firmID, recorderID, recorderType, period, recordType),
		ItemID:       itemID,
		Quantity:     quantity,
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
