package store

import "fmt"

// Tables lists every table owned by the store, in schema order.
var Tables = []string{
	"olm_sessions",
	"inbound_megolm_sessions",
	"outbound_megolm_sessions",
	"megolm_message_indices",
	"key_chain_links",
	"device_keys",
	"outdated_keys",
}

// RowCounts returns the row count per table; used for diagnostics only.
func (d *DB) RowCounts() (map[string]int, error) {
	counts := make(map[string]int, len(Tables))
	for _, table := range Tables {
		var n int
		// Table names come from the fixed list above, not from input.
		if err := d.conn.Get(&n, fmt.Sprintf("SELECT count(*) FROM %s", table)); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
