// Package sync replicates firm data between a local instance and a
// remote replica: pushing table snapshots out, pulling remote rows in,
// and fanning mutations out to the related-table closure.
package sync

// Tables is the fixed replication set, in push order. Parents come
// before children so upserts on the remote never dangle.
var Tables = []string{
	"firms",
	"categories",
	"units",
	"unit_conversions",
	"items",
	"groups",
	"parties",
	"party_additional_fields",
	"documents",
	"document_items",
	"document_charges",
	"document_transportation",
	"document_relationships",
	"stock_movements",
	"bank_accounts",
	"bank_transactions",
	"payments",
}

var tableSet = func() map[string]bool {
	m := make(map[string]bool, len(Tables))
	for _, t := range Tables {
		m[t] = true
	}
	return m
}()

// IsKnownTable reports whether the table belongs to the replication set.
func IsKnownTable(table string) bool {
	return tableSet[table]
}

// closures maps a mutated table to every table its mutation can touch.
// Document mutations move stock and rewrite party balances; payment
// mutations rewrite bank and party state.
var closures = map[string][]string{
	"documents": {
		"documents",
		"document_items",
		"document_charges",
		"document_transportation",
		"document_relationships",
		"stock_movements",
		"parties",
		"items",
	},
	"payments": {
		"payments",
		"bank_transactions",
		"bank_accounts",
		"parties",
		"items",
	},
	"parties": {
		"parties",
		"party_additional_fields",
	},
}

// Closure returns the set of tables affected by a mutation on the given
// table. Tables without a registered closure map to themselves.
func Closure(table string) []string {
	if c, ok := closures[table]; ok {
		out := make([]string, len(c))
		copy(out, c)
		return out
	}
	return []string{table}
}
