package sync

import (
	"context"
	"time"

	"khata/internal/core/id"
	"khata/internal/domain"
	"khata/pkg/logger"
)

// OutboxStatus represents the state of a queued table push.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusPublished  OutboxStatus = "published"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// OutboxMessage is one queued table push: "this firm's rows of this
// table need to reach the replica".
type OutboxMessage struct {
	ID          id.ID        `db:"id"`
	FirmID      id.ID        `db:"firm_id"`
	TableName   string       `db:"table_name"`
	Status      OutboxStatus `db:"status"`
	RetryCount  int          `db:"retry_count"`
	LastError   *string      `db:"last_error"`
	NextRetryAt *time.Time   `db:"next_retry_at"`
	CreatedAt   time.Time    `db:"created_at"`
	PublishedAt *time.Time   `db:"published_at"`
}

// OutboxStore persists queued table pushes.
type OutboxStore interface {
	// Enqueue adds one pending message per table, collapsing duplicates
	// that are already pending for the same firm and table.
	Enqueue(ctx context.Context, firmID id.ID, tables []string) error
}

// FanOutNotifier expands a mutated table into its closure and enqueues
// an outbox message per affected table. Enqueue failures are logged and
// swallowed: replication lag must never fail a business mutation.
type FanOutNotifier struct {
	store OutboxStore
}

// NewFanOutNotifier creates a notifier backed by the given store.
func NewFanOutNotifier(store OutboxStore) *FanOutNotifier {
	return &FanOutNotifier{store: store}
}

// NotifyChange implements domain.ChangeNotifier.
func (n *FanOutNotifier) NotifyChange(ctx context.Context, firmID id.ID, table string) {
	tables := Closure(table)
	if err := n.store.Enqueue(ctx, firmID, tables); err != nil {
		logger.Warn(ctx, "sync fan-out enqueue failed",
			"table", table,
			"affected", tables,
			"error", err,
		)
	}
}

var _ domain.ChangeNotifier = (*FanOutNotifier)(nil)
