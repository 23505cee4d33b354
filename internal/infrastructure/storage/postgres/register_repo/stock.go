// Package register_repo provides PostgreSQL implementations for the
// ledger register repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/registers/stock"
	"khata/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "stock_movements"

var stockMovementCols = []string{
	"line_id", "firm_id", "recorder_id", "recorder_type",
	"period", "record_type", "item_id", "quantity", "created_at",
}

// StockRepo implements stock.Repository. Item quantities live on the
// items table; movements are an append-only audit trail keyed by the
// recording document.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ stock.Repository = (*StockRepo)(nil)

// GetItemStock reads the item's current quantities, locking the row when
// inside a transaction so concurrent documents serialize on the item.
func (r *StockRepo) GetItemStock(ctx context.Context, firmID, itemID id.ID) (stock.ItemStock, error) {
	q := r.builder.
		Select("id", "primary_quantity", "secondary_quantity").
		From("items").
		Where(squirrel.Eq{"id": itemID, "firm_id": firmID})
	if r.txManager.GetTx(ctx) != nil {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return stock.ItemStock{}, fmt.Errorf("build query: %w", err)
	}

	var s stock.ItemStock
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return stock.ItemStock{}, apperror.NewNotFound("item", itemID.String())
		}
		return stock.ItemStock{}, fmt.Errorf("get item stock: %w", err)
	}

	return s, nil
}

// UpdateItemStock writes new quantities for an item.
func (r *StockRepo) UpdateItemStock(ctx context.Context, firmID, itemID id.ID, primary, secondary types.Quantity, touchSecondary bool) error {
	q := r.builder.
		Update("items").
		Set("primary_quantity", primary).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": itemID, "firm_id": firmID})
	if touchSecondary {
		q = q.Set("secondary_quantity", secondary)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}
	return nil
}

// CreateMovements batch inserts movements. Uses COPY when inside a
// transaction, plain multi-row INSERT otherwise.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, movementRow(m))
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, stockMovementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(stockMovementsTable).Columns(stockMovementCols...)
	for _, m := range movements {
		q = q.Values(movementRow(m)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func movementRow(m entity.StockMovement) []any {
	return []any{
		m.LineID, m.FirmID, m.RecorderID, m.RecorderType,
		m.Period, m.RecordType, m.ItemID, m.Quantity, m.CreatedAt,
	}
}

// DeleteMovementsByRecorder removes all movements written by a recorder.
func (r *StockRepo) DeleteMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) error {
	q := r.builder.Delete(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID, "firm_id": firmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	return nil
}

// GetMovementsByRecorder returns the recorder's movements, oldest first.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.
		Select(stockMovementCols...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID, "firm_id": firmID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("get movements: %w", err)
	}
	return movements, nil
}
