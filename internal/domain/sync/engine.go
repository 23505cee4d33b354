package sync

import (
	"context"
	"fmt"

	"khata/internal/core/id"
	"khata/pkg/logger"
)

// Record is one replicated row, keyed by column name. Every record
// carries an "id" column used for upserts on the receiving side.
type Record map[string]any

// Status classifies a per-table replication outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// TableResult is the outcome of replicating one table.
type TableResult struct {
	Table   string `json:"table"`
	Status  Status `json:"status"`
	Created int    `json:"created,omitempty"`
	Updated int    `json:"updated,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PushResult is the remote's acknowledgement of a table push.
type PushResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Client talks to the remote replica.
type Client interface {
	// Push sends a table snapshot to the remote, which upserts by id.
	Push(ctx context.Context, table, owner string, records []Record) (PushResult, error)

	// Fetch retrieves the remote's rows for a table. firmID is nil for
	// the firms table, which is scoped by owner alone.
	Fetch(ctx context.Context, table, owner string, firmID *id.ID) ([]Record, error)
}

// Store reads and writes local table snapshots.
type Store interface {
	// Snapshot returns all firm rows of a replicated table.
	Snapshot(ctx context.Context, firmID id.ID, table string) ([]Record, error)

	// Upsert writes records by id, returning how many were inserted
	// versus updated.
	Upsert(ctx context.Context, firmID id.ID, table string, records []Record) (created, updated int, err error)
}

// Engine walks the replication set table by table. A failure on one
// table is recorded in its result and never aborts the rest.
type Engine struct {
	store     Store
	newClient func(baseURL string) Client
}

// NewEngine creates a sync engine. newClient builds a transport for the
// remote URL given per call.
func NewEngine(store Store, newClient func(baseURL string) Client) *Engine {
	return &Engine{store: store, newClient: newClient}
}

// Push snapshots every replicated table and sends it to the remote.
func (e *Engine) Push(ctx context.Context, remoteURL, owner string, firmID id.ID) []TableResult {
	client := e.newClient(remoteURL)
	results := make([]TableResult, 0, len(Tables))

	for _, table := range Tables {
		results = append(results, e.pushTable(ctx, client, table, owner, firmID))
	}

	logger.Info(ctx, "sync push finished", "owner", owner, "tables", len(results))
	return results
}

func (e *Engine) pushTable(ctx context.Context, client Client, table, owner string, firmID id.ID) TableResult {
	records, err := e.store.Snapshot(ctx, firmID, table)
	if err != nil {
		logger.Warn(ctx, "sync push: snapshot failed", "table", table, "error", err)
		return TableResult{Table: table, Status: StatusFailed, Error: fmt.Sprintf("snapshot: %v", err)}
	}
	if len(records) == 0 {
		return TableResult{Table: table, Status: StatusSkipped, Reason: "no records"}
	}

	res, err := client.Push(ctx, table, owner, records)
	if err != nil {
		logger.Warn(ctx, "sync push: remote rejected table", "table", table, "error", err)
		return TableResult{Table: table, Status: StatusFailed, Error: err.Error()}
	}

	return TableResult{Table: table, Status: StatusSuccess, Created: res.Created, Updated: res.Updated}
}

// Pull fetches every replicated table from the remote and upserts the
// rows locally. Nothing is deleted: rows absent on the remote stay.
func (e *Engine) Pull(ctx context.Context, remoteURL, owner string, firmID id.ID) []TableResult {
	client := e.newClient(remoteURL)
	results := make([]TableResult, 0, len(Tables))

	for _, table := range Tables {
		results = append(results, e.pullTable(ctx, client, table, owner, firmID))
	}

	logger.Info(ctx, "sync pull finished", "owner", owner, "tables", len(results))
	return results
}

func (e *Engine) pullTable(ctx context.Context, client Client, table, owner string, firmID id.ID) TableResult {
	// firms rows predate the firm scope; they are fetched by owner only.
	var scope *id.ID
	if table != "firms" {
		scope = &firmID
	}

	records, err := client.Fetch(ctx, table, owner, scope)
	if err != nil {
		logger.Warn(ctx, "sync pull: fetch failed", "table", table, "error", err)
		return TableResult{Table: table, Status: StatusFailed, Error: err.Error()}
	}
	if len(records) == 0 {
		return TableResult{Table: table, Status: StatusSkipped, Reason: "no records"}
	}

	created, updated, err := e.store.Upsert(ctx, firmID, table, records)
	if err != nil {
		logger.Warn(ctx, "sync pull: upsert failed", "table", table, "error", err)
		return TableResult{Table: table, Status: StatusFailed, Error: fmt.Sprintf("upsert: %v", err)}
	}

	return TableResult{Table: table, Status: StatusSuccess, Created: created, Updated: updated}
}
