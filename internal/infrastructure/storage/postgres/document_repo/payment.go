package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/domain/payments"
	"khata/internal/infrastructure/storage/postgres"
)

const paymentsTable = "payments"

// PaymentRepo is the PostgreSQL implementation of payments.Repository.
type PaymentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	cols      []string
}

// NewPaymentRepo creates a payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:      postgres.ExtractDBColumns[payments.Payment](),
	}
}

var _ payments.Repository = (*PaymentRepo)(nil)

func (r *PaymentRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new payment row.
func (r *PaymentRepo) Create(ctx context.Context, payment *payments.Payment) error {
	data := postgres.StructToMap(payment)
	setData := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			setData[col] = val
		}
	}

	q := r.builder.Insert(paymentsTable).SetMap(setData)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID loads a payment.
func (r *PaymentRepo) GetByID(ctx context.Context, firmID, paymentID id.ID) (*payments.Payment, error) {
	q := r.builder.
		Select(r.cols...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID, "firm_id": firmID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	payment := &payments.Payment{}
	if err := pgxscan.Get(ctx, r.querier(ctx), payment, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

// Update writes the payment row.
func (r *PaymentRepo) Update(ctx context.Context, payment *payments.Payment) error {
	data := postgres.StructToMap(payment)
	setData := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if col == "id" || col == "firm_id" || col == "created_at" {
			continue
		}
		if val, ok := data[col]; ok {
			setData[col] = val
		}
	}

	q := r.builder.
		Update(paymentsTable).
		SetMap(setData).
		Where(squirrel.Eq{"id": payment.ID, "firm_id": payment.FirmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", payment.ID.String())
	}
	return nil
}

// Delete removes the payment row.
func (r *PaymentRepo) Delete(ctx context.Context, firmID, paymentID id.ID) error {
	q := r.builder.Delete(paymentsTable).
		Where(squirrel.Eq{"id": paymentID, "firm_id": firmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	return nil
}

// List returns payments matching the filter, newest first.
func (r *PaymentRepo) List(ctx context.Context, firmID id.ID, f payments.ListFilter) ([]*payments.Payment, error) {
	q := r.builder.
		Select(r.cols...).
		From(paymentsTable).
		Where(squirrel.Eq{"firm_id": firmID}).
		OrderBy("payment_date DESC", "created_at DESC")

	if f.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *f.Direction})
	}
	if f.PaymentMethod != nil {
		q = q.Where(squirrel.Eq{"payment_method": *f.PaymentMethod})
	}
	if f.PartyID != nil {
		q = q.Where(squirrel.Eq{"party_id": *f.PartyID})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"payment_date": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"payment_date": *f.ToDate})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []*payments.Payment
	if err := pgxscan.Select(ctx, r.querier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}
