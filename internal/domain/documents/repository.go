package documents

import (
	"context"
	"time"

	"khata/internal/core/entity"
	"khata/internal/core/id"
)

// ListFilter narrows document list queries.
type ListFilter struct {
	DocumentType *entity.DocumentType
	PartyID      *id.ID
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}

// Repository defines the interface for Document persistence.
type Repository interface {
	// Create inserts the document row and all child rows.
	Create(ctx context.Context, doc *Document) error

	// GetByID loads the document with its children.
	// Returns apperror.CodeNotFound when absent.
	GetByID(ctx context.Context, firmID, docID id.ID) (*Document, error)

	// Update writes the document row only.
	Update(ctx context.Context, doc *Document) error

	// ReplaceChildren deletes and re-inserts all child rows.
	ReplaceChildren(ctx context.Context, doc *Document) error

	// Delete removes child rows then the document row.
	Delete(ctx context.Context, firmID, docID id.ID) error

	// List returns documents (without children) matching the filter.
	List(ctx context.Context, firmID id.ID, filter ListFilter) ([]*Document, error)

	// ExistsByNumber checks (firm, type, number) uniqueness.
	// excludeID skips the given document (used on update).
	ExistsByNumber(ctx context.Context, firmID id.ID, docType entity.DocumentType, number string, excludeID *id.ID) (bool, error)
}
