package store

import (
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// openV1 builds a database frozen at schema version 1 with one inbound
// session row, simulating a store written by an older build.
func openV1(t *testing.T, path string, key []byte) {
	t.Helper()
	conn, err := sqlx.Open("sqlite3", path+"?"+dsnParams(key))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(schemaV1)
	require.NoError(t, err)
	_, err = conn.Exec(`
		INSERT INTO inbound_megolm_sessions
			(id, sender_key, sender_signing_key, session_id, room_id,
			 first_known_index, is_trusted, forwarding_key_chain, pickled)
		VALUES ('!roomsess', 'curve', 'ed', 'sess', '!room', 4, 1, '["k1"]', 'PICKLE')`)
	require.NoError(t, err)
	_, err = conn.Exec(`
		INSERT INTO key_chain_links (id, signing_user_id, signing_key, signed_user_id, signed_key)
		VALUES ('a', '@u', 'k', '@v', 'l'), ('b', '@u', 'k', '@v', 'l')`)
	require.NoError(t, err)
	_, err = conn.Exec(`PRAGMA user_version = 1`)
	require.NoError(t, err)
}

func TestMigrate_FromV1PreservesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto.db")
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	openV1(t, path, key)

	db, err := Open(path, key)
	require.NoError(t, err)
	defer db.Close()

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, version)

	// The shadow-table rebuild must keep the original table name and every
	// surviving column's value, with the new column defaulted.
	type row struct {
		ID              string `db:"id"`
		SenderKey       string `db:"sender_key"`
		FirstKnownIndex int64  `db:"first_known_index"`
		HasBeenBackedUp bool   `db:"has_been_backed_up"`
		IsTrusted       bool   `db:"is_trusted"`
		Pickled         string `db:"pickled"`
	}
	var got row
	err = db.conn.Get(&got, `
		SELECT id, sender_key, first_known_index, has_been_backed_up, is_trusted, pickled
		FROM inbound_megolm_sessions WHERE id = '!roomsess'`)
	require.NoError(t, err)
	require.Equal(t, "curve", got.SenderKey)
	require.EqualValues(t, 4, got.FirstKnownIndex)
	require.False(t, got.HasBeenBackedUp, "new column defaults to not backed up")
	require.True(t, got.IsTrusted)
	require.Equal(t, "PICKLE", got.Pickled)

	// Duplicate key-chain edges collapse during the dedupe step.
	var edges int
	err = db.conn.Get(&edges, `SELECT count(*) FROM key_chain_links`)
	require.NoError(t, err)
	require.Equal(t, 1, edges)

	// The secondary index survives the rename.
	var idx int
	err = db.conn.Get(&idx, `
		SELECT count(*) FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_inbound_megolm_room_session'`)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
}

func TestMigrate_NewerStoreRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto.db")
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	db, err := Open(path, key)
	require.NoError(t, err)
	_, err = db.conn.Exec(`PRAGMA user_version = 99`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path, key)
	require.Error(t, err, "a store from a newer build must not be opened")
}
