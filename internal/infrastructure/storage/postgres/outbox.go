package postgres

import (
	"context"
	"fmt"
	"time"

	"khata/internal/core/id"
	"khata/internal/domain/sync"
)

// SyncOutbox persists queued table pushes for the replica sync relay.
// It implements both ends: sync.OutboxStore for the enqueuing side and
// sync.RelayStore for the draining worker.
type SyncOutbox struct {
	txManager *TxManager
	pool      *Pool
}

// NewSyncOutbox creates a sync outbox over the pool. Enqueue joins the
// caller's transaction when one is active.
func NewSyncOutbox(txManager *TxManager, pool *Pool) *SyncOutbox {
	return &SyncOutbox{txManager: txManager, pool: pool}
}

var (
	_ sync.OutboxStore = (*SyncOutbox)(nil)
	_ sync.RelayStore  = (*SyncOutbox)(nil)
)

// Enqueue adds one pending message per table. A pending message for the
// same firm and table is left in place: the relay pushes whole-table
// snapshots, so one queued push covers any number of mutations.
func (o *SyncOutbox) Enqueue(ctx context.Context, firmID id.ID, tables []string) error {
	querier := o.txManager.GetQuerier(ctx)
	now := time.Now().UTC()

	for _, table := range tables {
		_, err := querier.Exec(ctx, `
			INSERT INTO sync_outbox (id, firm_id, table_name, status, retry_count, created_at)
			SELECT $1, $2, $3, $4, 0, $5
			WHERE NOT EXISTS (
				SELECT 1 FROM sync_outbox
				WHERE firm_id = $2 AND table_name = $3 AND status = $4
			)
		`, id.New(), firmID, table, sync.OutboxStatusPending, now)
		if err != nil {
			return fmt.Errorf("enqueue sync outbox %s: %w", table, err)
		}
	}

	return nil
}

// claimLease bounds how long a dequeued message stays claimed. A relay
// that dies mid-publish releases its claims when the lease runs out.
const claimLease = 10 * time.Minute

// dequeueSQL claims due messages in one statement: the subselect locks
// candidate rows with SKIP LOCKED so concurrent relays partition the
// queue, and the update moves them to processing before any lock is
// released. Expired processing claims are picked up again.
const dequeueSQL = `
	UPDATE sync_outbox
	SET status = $1, next_retry_at = $2
	WHERE id IN (
		SELECT id FROM sync_outbox
		WHERE (status = $3 OR status = $1)
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at
		LIMIT $4
		FOR UPDATE SKIP LOCKED
	)
	RETURNING id, firm_id, table_name, status, retry_count, last_error, next_retry_at, created_at, published_at
`

// Dequeue claims due pending messages for this relay.
func (o *SyncOutbox) Dequeue(ctx context.Context, batchSize int) ([]sync.OutboxMessage, error) {
	leaseUntil := time.Now().UTC().Add(claimLease)

	rows, err := o.pool.Query(ctx, dequeueSQL,
		sync.OutboxStatusProcessing, leaseUntil, sync.OutboxStatusPending, batchSize)
	if err != nil {
		return nil, fmt.Errorf("claim sync outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []sync.OutboxMessage
	for rows.Next() {
		var msg sync.OutboxMessage
		err := rows.Scan(
			&msg.ID, &msg.FirmID, &msg.TableName, &msg.Status,
			&msg.RetryCount, &msg.LastError, &msg.NextRetryAt,
			&msg.CreatedAt, &msg.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sync outbox message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync outbox messages: %w", err)
	}

	return messages, nil
}

// MarkPublished records a successful push.
func (o *SyncOutbox) MarkPublished(ctx context.Context, msg sync.OutboxMessage) error {
	_, err := o.pool.Exec(ctx, `
		UPDATE sync_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, sync.OutboxStatusPublished, time.Now().UTC(), msg.ID)
	if err != nil {
		return fmt.Errorf("mark sync outbox published: %w", err)
	}
	return nil
}

// MarkFailed reschedules a failed push, or parks it as failed once the
// retry budget is exhausted.
func (o *SyncOutbox) MarkFailed(ctx context.Context, msg sync.OutboxMessage, cause error, nextRetryAt time.Time, exhausted bool) error {
	status := sync.OutboxStatusPending
	if exhausted {
		status = sync.OutboxStatusFailed
	}

	_, err := o.pool.Exec(ctx, `
		UPDATE sync_outbox
		SET retry_count = retry_count + 1,
		    last_error = $1,
		    next_retry_at = $2,
		    status = $3
		WHERE id = $4
	`, cause.Error(), nextRetryAt, status, msg.ID)
	if err != nil {
		return fmt.Errorf("mark sync outbox failed: %w", err)
	}
	return nil
}

// PurgePublished deletes published messages older than the retention
// window. Returns how many rows were removed.
func (o *SyncOutbox) PurgePublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := o.pool.Exec(ctx, `
		DELETE FROM sync_outbox
		WHERE status = $1 AND published_at < $2
	`, sync.OutboxStatusPublished, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("purge sync outbox: %w", err)
	}
	return result.RowsAffected(), nil
}
