package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"olmvault/internal/domain"
)

// MegolmSessionRepo persists inbound and outbound Megolm group sessions.
type MegolmSessionRepo struct {
	db *DB
}

// NewMegolmSessionRepo returns a repository backed by db.
func NewMegolmSessionRepo(db *DB) *MegolmSessionRepo { return &MegolmSessionRepo{db: db} }

type inboundSessionRow struct {
	ID                 string `db:"id"`
	SenderKey          string `db:"sender_key"`
	SenderSigningKey   string `db:"sender_signing_key"`
	SessionID          string `db:"session_id"`
	RoomID             string `db:"room_id"`
	FirstKnownIndex    int64  `db:"first_known_index"`
	HasBeenBackedUp    bool   `db:"has_been_backed_up"`
	IsTrusted          bool   `db:"is_trusted"`
	ForwardingKeyChain string `db:"forwarding_key_chain"` // JSON array, order preserved
	Pickled            string `db:"pickled"`
}

type outboundSessionRow struct {
	ID                    string `db:"id"`
	RoomID                string `db:"room_id"`
	CreatedAt             int64  `db:"created_at"`
	EncryptedMessageCount int64  `db:"encrypted_message_count"`
	NewDevices            string `db:"new_devices"` // JSON object user -> [device ids]
	Pickled               string `db:"pickled"`
}

// UpsertInboundSession stores s, replacing any row with the same
// (roomID, sessionID) identifier. The trust flag is written exactly as
// given; the store never upgrades it on its own.
func (r *MegolmSessionRepo) UpsertInboundSession(ctx context.Context, s domain.InboundMegolmSession) error {
	chain, err := json.Marshal(s.ForwardingKeyChain)
	if err != nil {
		return fmt.Errorf("encode forwarding chain: %w", err)
	}
	_, err = r.db.conn.ExecContext(ctx, `
		INSERT INTO inbound_megolm_sessions
			(id, sender_key, sender_signing_key, session_id, room_id,
			 first_known_index, has_been_backed_up, is_trusted,
			 forwarding_key_chain, pickled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			sender_key = excluded.sender_key,
			sender_signing_key = excluded.sender_signing_key,
			session_id = excluded.session_id,
			room_id = excluded.room_id,
			first_known_index = excluded.first_known_index,
			has_been_backed_up = excluded.has_been_backed_up,
			is_trusted = excluded.is_trusted,
			forwarding_key_chain = excluded.forwarding_key_chain,
			pickled = excluded.pickled`,
		domain.DeriveInboundSessionID(s.RoomID, s.SessionID),
		s.SenderKey, s.SenderSigningKey, s.SessionID, s.RoomID,
		s.FirstKnownIndex, s.HasBeenBackedUp, s.IsTrusted,
		string(chain), s.Pickled,
	)
	if err != nil {
		return fmt.Errorf("upsert inbound megolm session: %w", err)
	}
	return nil
}

// GetInboundSession returns the session for (roomID, sessionID), if any.
func (r *MegolmSessionRepo) GetInboundSession(ctx context.Context, roomID, sessionID string) (domain.InboundMegolmSession, bool, error) {
	var row inboundSessionRow
	err := r.db.conn.GetContext(ctx, &row, `
		SELECT id, sender_key, sender_signing_key, session_id, room_id,
		       first_known_index, has_been_backed_up, is_trusted,
		       forwarding_key_chain, pickled
		FROM inbound_megolm_sessions WHERE id = ?`,
		domain.DeriveInboundSessionID(roomID, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InboundMegolmSession{}, false, nil
	}
	if err != nil {
		return domain.InboundMegolmSession{}, false, fmt.Errorf("get inbound megolm session: %w", err)
	}

	var chain []string
	if err := json.Unmarshal([]byte(row.ForwardingKeyChain), &chain); err != nil {
		return domain.InboundMegolmSession{}, false, fmt.Errorf("decode forwarding chain: %w", err)
	}
	return domain.InboundMegolmSession{
		SenderKey:          row.SenderKey,
		SenderSigningKey:   row.SenderSigningKey,
		SessionID:          row.SessionID,
		RoomID:             row.RoomID,
		FirstKnownIndex:    row.FirstKnownIndex,
		HasBeenBackedUp:    row.HasBeenBackedUp,
		IsTrusted:          row.IsTrusted,
		ForwardingKeyChain: chain,
		Pickled:            row.Pickled,
	}, true, nil
}

// UpsertOutboundSession stores the room's current outbound session,
// replacing any previous one. At most one live outbound session exists per
// room; rotation is the engine's call.
func (r *MegolmSessionRepo) UpsertOutboundSession(ctx context.Context, s domain.OutboundMegolmSession) error {
	devices, err := json.Marshal(s.NewDevices)
	if err != nil {
		return fmt.Errorf("encode new devices: %w", err)
	}
	_, err = r.db.conn.ExecContext(ctx, `
		INSERT INTO outbound_megolm_sessions
			(id, room_id, created_at, encrypted_message_count, new_devices, pickled)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			room_id = excluded.room_id,
			created_at = excluded.created_at,
			encrypted_message_count = excluded.encrypted_message_count,
			new_devices = excluded.new_devices,
			pickled = excluded.pickled`,
		domain.DeriveOutboundSessionID(s.RoomID),
		s.RoomID, s.CreatedAt, s.EncryptedMessageCount, string(devices), s.Pickled,
	)
	if err != nil {
		return fmt.Errorf("upsert outbound megolm session: %w", err)
	}
	return nil
}

// GetOutboundSession returns the room's current outbound session, if any.
func (r *MegolmSessionRepo) GetOutboundSession(ctx context.Context, roomID string) (domain.OutboundMegolmSession, bool, error) {
	var row outboundSessionRow
	err := r.db.conn.GetContext(ctx, &row, `
		SELECT id, room_id, created_at, encrypted_message_count, new_devices, pickled
		FROM outbound_megolm_sessions WHERE id = ?`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OutboundMegolmSession{}, false, nil
	}
	if err != nil {
		return domain.OutboundMegolmSession{}, false, fmt.Errorf("get outbound megolm session: %w", err)
	}

	var devices map[string][]string
	if err := json.Unmarshal([]byte(row.NewDevices), &devices); err != nil {
		return domain.OutboundMegolmSession{}, false, fmt.Errorf("decode new devices: %w", err)
	}
	return domain.OutboundMegolmSession{
		RoomID:                row.RoomID,
		CreatedAt:             row.CreatedAt,
		EncryptedMessageCount: row.EncryptedMessageCount,
		NewDevices:            devices,
		Pickled:               row.Pickled,
	}, true, nil
}

// Compile-time assertions that MegolmSessionRepo implements both Megolm store contracts.
var (
	_ domain.InboundMegolmSessionStore  = (*MegolmSessionRepo)(nil)
	_ domain.OutboundMegolmSessionStore = (*MegolmSessionRepo)(nil)
)
