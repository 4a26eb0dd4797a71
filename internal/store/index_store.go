package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"olmvault/internal/domain"
)

// MessageIndexRepo is the replay-detection ledger for Megolm message
// indices.
type MessageIndexRepo struct {
	db *DB
}

// NewMessageIndexRepo returns a repository backed by db.
func NewMessageIndexRepo(db *DB) *MessageIndexRepo { return &MessageIndexRepo{db: db} }

type messageIndexRow struct {
	ID              string `db:"id"`
	RoomID          string `db:"room_id"`
	SessionID       string `db:"session_id"`
	MessageIndex    int64  `db:"message_index"`
	EventID         string `db:"event_id"`
	OriginTimestamp int64  `db:"origin_timestamp"`
}

// RecordIndex claims (roomID, sessionID, index) for idx.EventID.
//
// The claim is a single conditional insert inside one transaction, so two
// racing decrypts for the same coordinate can never both win: the conflict
// resolves inside the engine, the loser re-reads the winning row and either
// succeeds idempotently (same event id) or gets ErrReplayDetected. A losing
// event id is never visible under the key.
func (r *MessageIndexRepo) RecordIndex(ctx context.Context, idx domain.MessageIndex) error {
	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record message index: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO megolm_message_indices
			(id, room_id, session_id, message_index, event_id, origin_timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (room_id, session_id, message_index) DO NOTHING`,
		domain.DeriveMessageIndexID(idx.RoomID, idx.SessionID, idx.MessageIndex),
		idx.RoomID, idx.SessionID, idx.MessageIndex, idx.EventID, idx.OriginTimestamp,
	)
	if err != nil {
		return fmt.Errorf("record message index: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record message index: %w", err)
	}

	if inserted == 0 {
		// Index already claimed; redelivery of the same event is fine,
		// anything else is a replay.
		var existing string
		err := tx.GetContext(ctx, &existing, `
			SELECT event_id FROM megolm_message_indices
			WHERE room_id = ? AND session_id = ? AND message_index = ?`,
			idx.RoomID, idx.SessionID, idx.MessageIndex)
		if err != nil {
			return fmt.Errorf("record message index: %w", err)
		}
		if existing != idx.EventID {
			return fmt.Errorf("%w: index %d of session %s claimed by %s, refused for %s",
				domain.ErrReplayDetected, idx.MessageIndex, idx.SessionID, existing, idx.EventID)
		}
	}
	return tx.Commit()
}

// LookupIndex returns the ledger entry for (roomID, sessionID, index), if
// any.
func (r *MessageIndexRepo) LookupIndex(ctx context.Context, roomID, sessionID string, index int64) (domain.MessageIndex, bool, error) {
	var row messageIndexRow
	err := r.db.conn.GetContext(ctx, &row, `
		SELECT id, room_id, session_id, message_index, event_id, origin_timestamp
		FROM megolm_message_indices
		WHERE room_id = ? AND session_id = ? AND message_index = ?`,
		roomID, sessionID, index)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MessageIndex{}, false, nil
	}
	if err != nil {
		return domain.MessageIndex{}, false, fmt.Errorf("lookup message index: %w", err)
	}
	return domain.MessageIndex{
		RoomID:          row.RoomID,
		SessionID:       row.SessionID,
		MessageIndex:    row.MessageIndex,
		EventID:         row.EventID,
		OriginTimestamp: row.OriginTimestamp,
	}, true, nil
}

// Compile-time assertion that MessageIndexRepo implements domain.MessageIndexStore.
var _ domain.MessageIndexStore = (*MessageIndexRepo)(nil)
