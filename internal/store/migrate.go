package store

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"olmvault/internal/domain"
)

// CurrentSchemaVersion is the schema version this build writes and reads.
// Bump it together with a new entry in migrations.
const CurrentSchemaVersion = 3

type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

// Migrations run strictly in order; a fresh database starts at version 0 and
// takes the same path as an old one. Each step runs in its own transaction
// and records its target version inside that transaction, so a failure
// leaves the store at its last fully-migrated version.
var migrations = []migration{
	{1, "initial schema", func(tx *sql.Tx) error {
		_, err := tx.Exec(schemaV1)
		return err
	}},
	{2, "track key-backup state on inbound sessions", func(tx *sql.Tx) error {
		steps := []string{
			schemaV2InboundShadow,
			schemaV2InboundCopy,
			`DROP TABLE inbound_megolm_sessions`,
			`ALTER TABLE inbound_megolm_sessions_new RENAME TO inbound_megolm_sessions`,
			`CREATE INDEX idx_inbound_megolm_room_session
				ON inbound_megolm_sessions (room_id, session_id)`,
		}
		for _, s := range steps {
			if _, err := tx.Exec(s); err != nil {
				return err
			}
		}
		return nil
	}},
	{3, "dedupe key-chain links by 4-tuple", func(tx *sql.Tx) error {
		// Older stores could accumulate one row per sync for the same edge.
		// Keep the first row of each 4-tuple, then enforce uniqueness.
		steps := []string{
			`DELETE FROM key_chain_links WHERE rowid NOT IN (
				SELECT MIN(rowid) FROM key_chain_links
				GROUP BY signing_user_id, signing_key, signed_user_id, signed_key
			)`,
			`CREATE UNIQUE INDEX idx_key_chain_edge ON key_chain_links
				(signing_user_id, signing_key, signed_user_id, signed_key)`,
		}
		for _, s := range steps {
			if _, err := tx.Exec(s); err != nil {
				return err
			}
		}
		return nil
	}},
}

func (d *DB) migrate() error {
	current, err := d.SchemaVersion()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMigrationFailure, err)
	}
	if current > CurrentSchemaVersion {
		return fmt.Errorf("%w: store version %d is newer than this build (%d)",
			domain.ErrMigrationFailure, current, CurrentSchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := d.applyMigration(m); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v",
				domain.ErrMigrationFailure, m.version, m.description, err)
		}
		logrus.WithFields(logrus.Fields{
			"path":    d.path,
			"version": m.version,
		}).Info("applied schema migration")
	}
	return nil
}

func (d *DB) applyMigration(m migration) error {
	tx, err := d.conn.DB.Begin()
	if err != nil {
		return err
	}
	if err := m.apply(tx); err != nil {
		tx.Rollback()
		return err
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
