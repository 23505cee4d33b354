package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/catalogs/item"
	"khata/internal/infrastructure/storage/postgres"
)

// ItemRepo is the PostgreSQL implementation of item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates an item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"items",
			postgres.ExtractDBColumns[item.Item](),
			[]string{"name", "item_code"},
			func() *item.Item { return &item.Item{} },
		),
	}
}

var _ item.Repository = (*ItemRepo)(nil)

// UpdateQuantities writes new stock quantities for an item.
func (r *ItemRepo) UpdateQuantities(ctx context.Context, firmID, itemID id.ID, primary, secondary types.Quantity, touchSecondary bool) error {
	q := r.Builder().
		Update("items").
		Set("primary_quantity", primary).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": itemID, "firm_id": firmID})
	if touchSecondary {
		q = q.Set("secondary_quantity", secondary)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update quantities: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item quantities: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}
	return nil
}
