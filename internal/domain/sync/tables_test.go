package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTablesOrderAndCount(t *testing.T) {
	assert.Len(t, Tables, 17)
	assert.Equal(t, "firms", Tables[0], "firms must replicate first")
	assert.Equal(t, "payments", Tables[len(Tables)-1])

	index := make(map[string]int, len(Tables))
	for i, table := range Tables {
		index[table] = i
	}
	// children never precede their parent table
	assert.Less(t, index["documents"], index["document_items"])
	assert.Less(t, index["documents"], index["document_charges"])
	assert.Less(t, index["parties"], index["party_additional_fields"])
	assert.Less(t, index["bank_accounts"], index["bank_transactions"])
	assert.Less(t, index["units"], index["unit_conversions"])
}

func TestIsKnownTable(t *testing.T) {
	for _, table := range Tables {
		assert.True(t, IsKnownTable(table), table)
	}
	assert.False(t, IsKnownTable("users"))
	assert.False(t, IsKnownTable(""))
	assert.False(t, IsKnownTable("documents; DROP TABLE documents"))
}

func TestClosureDocuments(t *testing.T) {
	got := Closure("documents")
	assert.Equal(t, []string{
		"documents",
		"document_items",
		"document_charges",
		"document_transportation",
		"document_relationships",
		"stock_movements",
		"parties",
		"items",
	}, got)
}

func TestClosurePayments(t *testing.T) {
	got := Closure("payments")
	assert.Equal(t, []string{
		"payments",
		"bank_transactions",
		"bank_accounts",
		"parties",
		"items",
	}, got)
}

func TestClosureParties(t *testing.T) {
	assert.Equal(t, []string{"parties", "party_additional_fields"}, Closure("parties"))
}

func TestClosureDefaultsToSelf(t *testing.T) {
	assert.Equal(t, []string{"items"}, Closure("items"))
	assert.Equal(t, []string{"bank_accounts"}, Closure("bank_accounts"))
}

func TestClosureReturnsCopy(t *testing.T) {
	first := Closure("documents")
	first[0] = "mutated"
	assert.Equal(t, "documents", Closure("documents")[0])
}

func TestClosureTablesAreKnown(t *testing.T) {
	for _, table := range Tables {
		for _, affected := range Closure(table) {
			assert.True(t, IsKnownTable(affected), "%s -> %s", table, affected)
		}
	}
}
