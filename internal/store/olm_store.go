package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"olmvault/internal/domain"
)

// OlmSessionRepo persists pairwise Olm sessions in the encrypted store.
type OlmSessionRepo struct {
	db *DB
}

// NewOlmSessionRepo returns a repository backed by db.
func NewOlmSessionRepo(db *DB) *OlmSessionRepo { return &OlmSessionRepo{db: db} }

type olmSessionRow struct {
	ID         string `db:"id"`
	SenderKey  string `db:"sender_key"`
	SessionID  string `db:"session_id"`
	CreatedAt  int64  `db:"created_at"`
	LastUsedAt int64  `db:"last_used_at"`
	Pickled    string `db:"pickled"`
	Initiated  bool   `db:"initiated"`
}

// UpsertOlmSession replaces any existing row with the same derived id. The
// pickled blob and its metadata land in one statement, so ratchet position
// is never persisted apart from the session state it belongs to.
func (r *OlmSessionRepo) UpsertOlmSession(ctx context.Context, s domain.OlmSession) error {
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO olm_sessions
			(id, sender_key, session_id, created_at, last_used_at, pickled, initiated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			sender_key = excluded.sender_key,
			session_id = excluded.session_id,
			created_at = excluded.created_at,
			last_used_at = excluded.last_used_at,
			pickled = excluded.pickled,
			initiated = excluded.initiated`,
		domain.DeriveOlmSessionID(s.SenderKey),
		s.SenderKey, s.SessionID, s.CreatedAt, s.LastUsedAt, s.Pickled, s.Initiated,
	)
	if err != nil {
		return fmt.Errorf("upsert olm session: %w", err)
	}
	return nil
}

// GetOlmSession returns the stored session for senderKey, if any.
func (r *OlmSessionRepo) GetOlmSession(ctx context.Context, senderKey string) (domain.OlmSession, bool, error) {
	var row olmSessionRow
	err := r.db.conn.GetContext(ctx, &row, `
		SELECT id, sender_key, session_id, created_at, last_used_at, pickled, initiated
		FROM olm_sessions WHERE id = ?`, senderKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OlmSession{}, false, nil
	}
	if err != nil {
		return domain.OlmSession{}, false, fmt.Errorf("get olm session: %w", err)
	}
	return domain.OlmSession{
		SenderKey:  row.SenderKey,
		SessionID:  row.SessionID,
		CreatedAt:  row.CreatedAt,
		LastUsedAt: row.LastUsedAt,
		Pickled:    row.Pickled,
		Initiated:  row.Initiated,
	}, true, nil
}

// Compile-time assertion that OlmSessionRepo implements domain.OlmSessionStore.
var _ domain.OlmSessionStore = (*OlmSessionRepo)(nil)
