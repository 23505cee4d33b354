// Package stock provides the stock accumulation register service.
package stock

import (
	"context"
	"time"

	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/units"
	"khata/pkg/logger"
)

// Line is one document line item as the stock register sees it.
// The conversion rate is the snapshot recorded on the line, not the
// item's live rate: stock must move by what the transaction said.
type Line struct {
	ItemID            id.ID
	PrimaryQuantity   types.Quantity
	SecondaryQuantity types.Quantity
	SecondaryUnitID   *id.ID
	UnitConversionID  *id.ID
	ConversionRate    types.Quantity
}

// Service applies signed stock deltas to item quantities and keeps the
// movement log in step. Transactions are managed by the caller.
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Apply updates item stock for every line of a document.
//
// No-op unless the document type moves stock. reverse=true flips the
// type's resolved direction (used to undo a previous apply). Each line
// is processed independently: a missing item or a failed update is
// logged and skipped so one bad row does not block the rest.
//
// Forward passes insert movement lines; reverse passes delete the
// recorder's movements instead.
func (s *Service) Apply(ctx context.Context, firmID, recorderID id.ID, docType entity.DocumentType, period time.Time, lines []Line, reverse bool) error {
	if !docType.AffectsStock() {
		return nil
	}

	decrease := docType.DecreasesStock()
	if reverse {
		decrease = !decrease
	}

	recordType := entity.RecordTypeReceipt
	if decrease {
		recordType = entity.RecordTypeExpense
	}

	var movements []entity.StockMovement

	for _, line := range lines {
		current, err := s.repo.GetItemStock(ctx, firmID, line.ItemID)
		if err != nil {
			logger.Warn(ctx, "stock item lookup failed, skipping line",
				"item_id", line.ItemID,
				"error", err,
			)
			continue
		}

		var delta types.Quantity
		if units.HasSecondaryUnit(line.SecondaryUnitID, line.UnitConversionID, line.ConversionRate) {
			delta = units.CompositeTotal(line.PrimaryQuantity, line.SecondaryQuantity, line.ConversionRate)
			total := units.CompositeTotal(current.PrimaryQuantity, current.SecondaryQuantity, line.ConversionRate)
			if decrease {
				total = total.Sub(delta)
			} else {
				total = total.Add(delta)
			}
			// Negative totals are allowed: stock may go below zero.
			primary, secondary, splitErr := units.SplitComposite(total, line.ConversionRate)
			if splitErr != nil {
				logger.Warn(ctx, "stock split failed, skipping line",
					"item_id", line.ItemID,
					"error", splitErr,
				)
				continue
			}
			if err := s.repo.UpdateItemStock(ctx, firmID, line.ItemID, primary, secondary, true); err != nil {
				logger.Error(ctx, "stock update failed, skipping line",
					"item_id", line.ItemID,
					"error", err,
				)
				continue
			}
		} else {
			delta = line.PrimaryQuantity
			primary := current.PrimaryQuantity
			if decrease {
				primary = primary.Sub(delta)
			} else {
				primary = primary.Add(delta)
			}
			if err := s.repo.UpdateItemStock(ctx, firmID, line.ItemID, primary, current.SecondaryQuantity, false); err != nil {
				logger.Error(ctx, "stock update failed, skipping line",
					"item_id", line.ItemID,
					"error", err,
				)
				continue
			}
		}

		if !reverse {
			movements = append(movements, entity.NewStockMovement(
				firmID, recorderID, string(docType), period, recordType,
				line.ItemID, delta.Abs(),
			))
		}
	}

	if reverse {
		if err := s.repo.DeleteMovementsByRecorder(ctx, firmID, recorderID); err != nil {
			logger.Error(ctx, "failed to delete stock movements",
				"recorder_id", recorderID,
				"error", err,
			)
		}
		return nil
	}

	if len(movements) > 0 {
		if err := s.repo.CreateMovements(ctx, movements); err != nil {
			logger.Error(ctx, "failed to record stock movements",
				"recorder_id", recorderID,
				"count", len(movements),
				"error", err,
			)
		}
	}

	return nil
}

// Movements returns the movement lines recorded by a document.
func (s *Service) Movements(ctx context.Context, firmID, recorderID id.ID) ([]entity.StockMovement, error) {
	return s.repo.GetMovementsByRecorder(ctx, firmID, recorderID)
}
