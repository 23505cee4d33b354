// Package sync_repo provides PostgreSQL storage for the replica sync
// engine: whole-table snapshots and upserts for the replication set.
package sync_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/domain/sync"
	"khata/internal/infrastructure/storage/postgres"
)

// Store implements sync.Store. Table names are validated against the
// fixed replication set before they reach SQL.
type Store struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStore creates a sync store.
func NewStore(txManager *postgres.TxManager) *Store {
	return &Store{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ sync.Store = (*Store)(nil)

// snapshotQuery builds the select for one replicated table. The firms
// registry predates the firm scope and is replicated whole; every other
// table is scoped to the firm.
func (s *Store) snapshotQuery(firmID id.ID, table string) (string, []any, error) {
	q := s.builder.Select("*").From(table)
	if table != "firms" {
		q = q.Where(squirrel.Eq{"firm_id": firmID})
	}
	return q.ToSql()
}

// Snapshot returns the replicated rows of a table as generic records.
func (s *Store) Snapshot(ctx context.Context, firmID id.ID, table string) ([]sync.Record, error) {
	if !sync.IsKnownTable(table) {
		return nil, apperror.NewInvalidInput("unknown sync table").WithDetail("table", table)
	}

	sqlStr, args, err := s.snapshotQuery(firmID, table)
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", table, err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", table, err)
	}
	return records, nil
}

// collectRecords drains rows into generic column-keyed records.
func collectRecords(rows pgx.Rows) ([]sync.Record, error) {
	var records []sync.Record
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		record := make(sync.Record, len(fields))
		for i, fd := range fields {
			record[string(fd.Name)] = values[i]
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// SnapshotFirmsByOwner returns all firms registered to the owner. Used
// by the serving side of pull, where the peer does not know firm IDs yet.
func (s *Store) SnapshotFirmsByOwner(ctx context.Context, owner string) ([]sync.Record, error) {
	sqlStr, args, err := s.builder.
		Select("*").
		From("firms").
		Where(squirrel.Eq{"owner": owner}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build firms query: %w", err)
	}

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot firms by owner: %w", err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("snapshot firms by owner: %w", err)
	}
	return records, nil
}

// Upsert writes records by id: update when the row exists, insert
// otherwise. Returns how many rows took each path.
func (s *Store) Upsert(ctx context.Context, firmID id.ID, table string, records []sync.Record) (int, int, error) {
	if !sync.IsKnownTable(table) {
		return 0, 0, apperror.NewInvalidInput("unknown sync table").WithDetail("table", table)
	}

	created, updated := 0, 0
	for _, record := range records {
		recordID, ok := record["id"]
		if !ok {
			return created, updated, apperror.NewInvalidInput("sync record has no id").WithDetail("table", table)
		}

		wasUpdate, err := s.upsertOne(ctx, table, recordID, record)
		if err != nil {
			return created, updated, fmt.Errorf("upsert into %s: %w", table, err)
		}
		if wasUpdate {
			updated++
		} else {
			created++
		}
	}

	return created, updated, nil
}

func (s *Store) upsertOne(ctx context.Context, table string, recordID any, record sync.Record) (bool, error) {
	querier := s.txManager.GetQuerier(ctx)

	var exists int
	checkSQL, checkArgs, err := s.builder.
		Select("1").From(table).Where(squirrel.Eq{"id": recordID}).Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	err = querier.QueryRow(ctx, checkSQL, checkArgs...).Scan(&exists)
	switch {
	case err == pgx.ErrNoRows:
		insertSQL, insertArgs, err := s.builder.Insert(table).SetMap(record).ToSql()
		if err != nil {
			return false, fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, insertSQL, insertArgs...); err != nil {
			return false, err
		}
		return false, nil

	case err != nil:
		return false, err

	default:
		setData := make(map[string]any, len(record))
		for col, val := range record {
			if col == "id" {
				continue
			}
			setData[col] = val
		}
		updateSQL, updateArgs, err := s.builder.
			Update(table).SetMap(setData).Where(squirrel.Eq{"id": recordID}).
			ToSql()
		if err != nil {
			return false, fmt.Errorf("build update: %w", err)
		}
		if _, err := querier.Exec(ctx, updateSQL, updateArgs...); err != nil {
			return false, err
		}
		return true, nil
	}
}
