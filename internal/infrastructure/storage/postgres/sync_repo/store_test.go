package sync_repo

import (
	"testing"

	"khata/internal/core/id"
)

func TestSnapshotQueryScope(t *testing.T) {
	store := NewStore(nil)
	firmID := id.New()

	// firms is the registry table and is snapshotted whole
	sql, args, err := store.snapshotQuery(firmID, "firms")
	if err != nil {
		t.Fatalf("snapshotQuery(firms) failed: %v", err)
	}
	if sql != "SELECT * FROM firms" {
		t.Errorf("firms snapshot should be unscoped, got: %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("firms snapshot should carry no args, got: %v", args)
	}

	// every other table is scoped to the firm
	sql, args, err = store.snapshotQuery(firmID, "items")
	if err != nil {
		t.Fatalf("snapshotQuery(items) failed: %v", err)
	}
	if sql != "SELECT * FROM items WHERE firm_id = $1" {
		t.Errorf("items snapshot SQL mismatch, got: %s", sql)
	}
	if len(args) != 1 || args[0] != firmID {
		t.Errorf("items snapshot args mismatch, got: %v", args)
	}
}
