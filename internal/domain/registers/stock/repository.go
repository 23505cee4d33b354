// Package stock provides the stock accumulation register.
package stock

import (
	"context"

	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
)

// ItemStock is the slice of an item the register reads and writes.
type ItemStock struct {
	ItemID            id.ID          `db:"id"`
	PrimaryQuantity   types.Quantity `db:"primary_quantity"`
	SecondaryQuantity types.Quantity `db:"secondary_quantity"`
}

// Repository defines persistence operations for the stock register.
type Repository interface {
	// GetItemStock reads current stock fields for an item within the firm.
	// Returns apperror.CodeNotFound when the item does not exist.
	GetItemStock(ctx context.Context, firmID, itemID id.ID) (ItemStock, error)

	// UpdateItemStock writes new stock quantities.
	// touchSecondary=false leaves the secondary column untouched.
	UpdateItemStock(ctx context.Context, firmID, itemID id.ID, primary, secondary types.Quantity, touchSecondary bool) error

	// CreateMovements batch inserts movement lines
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// DeleteMovementsByRecorder removes all movements recorded by a document
	DeleteMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) ([]entity.StockMovement, error)
}
