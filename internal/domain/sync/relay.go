package sync

import (
	"context"
	"fmt"
	"time"

	"khata/pkg/logger"
)

// RelayStore is the outbox side the relay drains. Dequeue must claim
// the returned messages so a concurrent relay cannot publish them too.
type RelayStore interface {
	Dequeue(ctx context.Context, batchSize int) ([]OutboxMessage, error)
	MarkPublished(ctx context.Context, msg OutboxMessage) error
	MarkFailed(ctx context.Context, msg OutboxMessage, cause error, nextRetryAt time.Time, exhausted bool) error
}

// RelayConfig tunes the outbox relay.
type RelayConfig struct {
	RemoteURL    string
	Owner        string
	BatchSize    int
	MaxRetries   int
	PollInterval time.Duration
	RetryBackoff time.Duration
}

func (c *RelayConfig) defaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Minute
	}
}

// Relay drains the sync outbox: for each queued message it snapshots the
// firm's rows of the named table and pushes them to the remote replica.
// Pushes are idempotent upserts, so re-delivery after a crash is safe.
type Relay struct {
	outbox RelayStore
	store  Store
	client Client
	cfg    RelayConfig
}

// NewRelay creates an outbox relay.
func NewRelay(outbox RelayStore, store Store, newClient func(baseURL string) Client, cfg RelayConfig) *Relay {
	cfg.defaults()
	return &Relay{
		outbox: outbox,
		store:  store,
		client: newClient(cfg.RemoteURL),
		cfg:    cfg,
	}
}

// Run drains the outbox on the poll interval until the context ends.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil {
				logger.Error(ctx, "sync relay batch failed", "error", err)
			}
		}
	}
}

// ProcessBatch publishes one batch of pending messages. Returns how many
// were published; a failing message is rescheduled and the rest of the
// batch continues.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	messages, err := r.outbox.Dequeue(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("dequeue outbox: %w", err)
	}

	published := 0
	for _, msg := range messages {
		if err := r.publish(ctx, msg); err != nil {
			r.reschedule(ctx, msg, err)
			continue
		}
		if err := r.outbox.MarkPublished(ctx, msg); err != nil {
			logger.Warn(ctx, "sync relay: mark published failed", "message_id", msg.ID, "error", err)
			continue
		}
		published++
	}

	return published, nil
}

func (r *Relay) publish(ctx context.Context, msg OutboxMessage) error {
	records, err := r.store.Snapshot(ctx, msg.FirmID, msg.TableName)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", msg.TableName, err)
	}
	if len(records) == 0 {
		return nil
	}

	res, err := r.client.Push(ctx, msg.TableName, r.cfg.Owner, records)
	if err != nil {
		return fmt.Errorf("push %s: %w", msg.TableName, err)
	}

	logger.Debug(ctx, "sync relay pushed table",
		"table", msg.TableName,
		"created", res.Created,
		"updated", res.Updated,
	)
	return nil
}

func (r *Relay) reschedule(ctx context.Context, msg OutboxMessage, cause error) {
	backoff := time.Duration(msg.RetryCount+1) * r.cfg.RetryBackoff
	exhausted := msg.RetryCount+1 >= r.cfg.MaxRetries

	logger.Warn(ctx, "sync relay: publish failed",
		"message_id", msg.ID,
		"table", msg.TableName,
		"retry_count", msg.RetryCount,
		"exhausted", exhausted,
		"error", cause,
	)

	if err := r.outbox.MarkFailed(ctx, msg, cause, time.Now().Add(backoff), exhausted); err != nil {
		logger.Error(ctx, "sync relay: mark failed errored", "message_id", msg.ID, "error", err)
	}
}
