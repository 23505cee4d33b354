// Package document_repo provides PostgreSQL implementations for the
// document and payment repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/domain/documents"
	"khata/internal/infrastructure/storage/postgres"
)

const (
	documentsTable      = "documents"
	documentItemsTable  = "document_items"
	chargesTable        = "document_charges"
	transportationTable = "document_transportation"
)

// DocumentRepo is the PostgreSQL implementation of documents.Repository.
// Child rows live in their own tables and are written and replaced as
// one unit with the header.
type DocumentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType

	docCols       []string
	itemCols      []string
	chargeCols    []string
	transportCols []string
}

// NewDocumentRepo creates a document repository.
func NewDocumentRepo(txManager *postgres.TxManager) *DocumentRepo {
	return &DocumentRepo{
		txManager:     txManager,
		builder:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		docCols:       postgres.ExtractDBColumns[documents.Document](),
		itemCols:      postgres.ExtractDBColumns[documents.DocumentItem](),
		chargeCols:    postgres.ExtractDBColumns[documents.DocumentCharge](),
		transportCols: postgres.ExtractDBColumns[documents.TransportationEntry](),
	}
}

var _ documents.Repository = (*DocumentRepo)(nil)

func (r *DocumentRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts the document row and all child rows.
func (r *DocumentRepo) Create(ctx context.Context, doc *documents.Document) error {
	if err := r.insertRow(ctx, documentsTable, r.docCols, postgres.StructToMap(doc)); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return r.insertChildren(ctx, doc)
}

// GetByID loads the document with its children.
func (r *DocumentRepo) GetByID(ctx context.Context, firmID, docID id.ID) (*documents.Document, error) {
	q := r.builder.
		Select(r.docCols...).
		From(documentsTable).
		Where(squirrel.Eq{"id": docID, "firm_id": firmID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	doc := &documents.Document{}
	if err := pgxscan.Get(ctx, r.querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document", docID.String())
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	if err := r.loadChildren(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update writes the document row only.
func (r *DocumentRepo) Update(ctx context.Context, doc *documents.Document) error {
	data := postgres.StructToMap(doc)
	setData := make(map[string]any, len(r.docCols))
	for _, col := range r.docCols {
		if col == "id" || col == "firm_id" || col == "created_at" {
			continue
		}
		if val, ok := data[col]; ok {
			setData[col] = val
		}
	}

	q := r.builder.
		Update(documentsTable).
		SetMap(setData).
		Where(squirrel.Eq{"id": doc.ID, "firm_id": doc.FirmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	return nil
}

// ReplaceChildren deletes and re-inserts all child rows.
func (r *DocumentRepo) ReplaceChildren(ctx context.Context, doc *documents.Document) error {
	if err := r.deleteChildren(ctx, doc.FirmID, doc.ID); err != nil {
		return err
	}
	return r.insertChildren(ctx, doc)
}

// Delete removes child rows then the document row.
func (r *DocumentRepo) Delete(ctx context.Context, firmID, docID id.ID) error {
	if err := r.deleteChildren(ctx, firmID, docID); err != nil {
		return err
	}

	q := r.builder.Delete(documentsTable).
		Where(squirrel.Eq{"id": docID, "firm_id": firmID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("document", docID.String())
	}
	return nil
}

// List returns documents (without children) matching the filter.
func (r *DocumentRepo) List(ctx context.Context, firmID id.ID, f documents.ListFilter) ([]*documents.Document, error) {
	q := r.builder.
		Select(r.docCols...).
		From(documentsTable).
		Where(squirrel.Eq{"firm_id": firmID}).
		OrderBy("document_date DESC", "created_at DESC")

	if f.DocumentType != nil {
		q = q.Where(squirrel.Eq{"document_type": *f.DocumentType})
	}
	if f.PartyID != nil {
		q = q.Where(squirrel.Eq{"party_id": *f.PartyID})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"document_date": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"document_date": *f.ToDate})
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

	var docs []*documents.Document
	if err := pgxscan.Select(ctx, r.querier(ctx), &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ExistsByNumber checks (firm, type, number) uniqueness.
func (r *DocumentRepo) ExistsByNumber(ctx context.Context, firmID id.ID, docType entity.DocumentType, number string, excludeID *id.ID) (bool, error) {
	q := r.builder.
		Select("1").
		From(documentsTable).
		Where(squirrel.Eq{
			"firm_id":         firmID,
			"document_type":   docType,
			"document_number": number,
		}).
		Limit(1)
	if excludeID != nil {
		q = q.Where(squirrel.NotEq{"id": *excludeID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by number: %w", err)
	}
	return true, nil
}

// --- helpers ---

func (r *DocumentRepo) insertRow(ctx context.Context, table string, cols []string, data map[string]any) error {
	setData := make(map[string]any, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			setData[col] = val
		}
	}

	q := r.builder.Insert(table).SetMap(setData)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s: %w", table, err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *DocumentRepo) insertChildren(ctx context.Context, doc *documents.Document) error {
	for i := range doc.Items {
		if err := r.insertRow(ctx, documentItemsTable, r.itemCols, postgres.StructToMap(doc.Items[i])); err != nil {
			return err
		}
	}
	for i := range doc.Charges {
		if err := r.insertRow(ctx, chargesTable, r.chargeCols, postgres.StructToMap(doc.Charges[i])); err != nil {
			return err
		}
	}
	for i := range doc.Transportation {
		if err := r.insertRow(ctx, transportationTable, r.transportCols, postgres.StructToMap(doc.Transportation[i])); err != nil {
			return err
		}
	}
	return nil
}

func (r *DocumentRepo) deleteChildren(ctx context.Context, firmID, docID id.ID) error {
	for _, table := range []string{documentItemsTable, chargesTable, transportationTable} {
		q := r.builder.Delete(table).
			Where(squirrel.Eq{"document_id": docID, "firm_id": firmID})

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

func (r *DocumentRepo) loadChildren(ctx context.Context, doc *documents.Document) error {
	itemsQ := r.builder.
		Select(r.itemCols...).
		From(documentItemsTable).
		Where(squirrel.Eq{"document_id": doc.ID, "firm_id": doc.FirmID}).
		OrderBy("id")

	sql, args, err := itemsQ.ToSql()
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &doc.Items, sql, args...); err != nil {
		return fmt.Errorf("load document items: %w", err)
	}

	chargesQ := r.builder.
		Select(r.chargeCols...).
		From(chargesTable).
		Where(squirrel.Eq{"document_id": doc.ID, "firm_id": doc.FirmID})

	sql, args, err = chargesQ.ToSql()
	if err != nil {
		return fmt.Errorf("build charges query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &doc.Charges, sql, args...); err != nil {
		return fmt.Errorf("load document charges: %w", err)
	}

	transportQ := r.builder.
		Select(r.transportCols...).
		From(transportationTable).
		Where(squirrel.Eq{"document_id": doc.ID, "firm_id": doc.FirmID})

	sql, args, err = transportQ.ToSql()
	if err != nil {
		return fmt.Errorf("build transportation query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &doc.Transportation, sql, args...); err != nil {
		return fmt.Errorf("load document transportation: %w", err)
	}

	return nil
}

