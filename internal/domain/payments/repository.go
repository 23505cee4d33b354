package payments

import (
	"context"
	"time"

	"khata/internal/core/entity"
	"khata/internal/core/id"
)

// ListFilter narrows payment list queries.
type ListFilter struct {
	Direction     *entity.PaymentDirection
	PaymentMethod *entity.PaymentMethod
	PartyID       *id.ID
	FromDate      *time.Time
	ToDate        *time.Time
	Limit         int
	Offset        int
}

// Repository defines the interface for Payment persistence.
type Repository interface {
	// Create inserts a new payment row.
	Create(ctx context.Context, payment *Payment) error

	// GetByID loads a payment.
	// Returns apperror.CodeNotFound when absent.
	GetByID(ctx context.Context, firmID, paymentID id.ID) (*Payment, error)

	// Update writes the payment row.
	Update(ctx context.Context, payment *Payment) error

	// Delete removes the payment row.
	Delete(ctx context.Context, firmID, paymentID id.ID) error

	// List returns payments matching the filter.
	List(ctx context.Context, firmID id.ID, filter ListFilter) ([]*Payment, error)
}
