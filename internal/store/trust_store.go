package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"olmvault/internal/domain"
)

// KeyTrustRepo stores the cross-signing trust graph, device-key payloads and
// the outdated-key set.
type KeyTrustRepo struct {
	db *DB
}

// NewKeyTrustRepo returns a repository backed by db.
func NewKeyTrustRepo(db *DB) *KeyTrustRepo { return &KeyTrustRepo{db: db} }

type keyChainLinkRow struct {
	ID            string `db:"id"`
	SigningUserID string `db:"signing_user_id"`
	SigningKey    string `db:"signing_key"`
	SignedUserID  string `db:"signed_user_id"`
	SignedKey     string `db:"signed_key"`
}

type deviceKeyRow struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	KeyLabel      string `db:"key_label"`
	SignedPayload string `db:"signed_payload"`
	TrustLevel    string `db:"trust_level"`
}

// AddLink appends an edge to the trust graph. An identical 4-tuple collapses
// onto the existing edge via the unique index, so repeated syncs cannot grow
// the table.
func (r *KeyTrustRepo) AddLink(ctx context.Context, link domain.KeyChainLink) error {
	id := link.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO key_chain_links
			(id, signing_user_id, signing_key, signed_user_id, signed_key)
		VALUES (?, ?, ?, ?, ?)`,
		id, link.SigningUserID, link.SigningKey, link.SignedUserID, link.SignedKey,
	)
	if err != nil {
		return fmt.Errorf("add key chain link: %w", err)
	}
	return nil
}

// LinksForSignedKey returns every edge vouching for (signedUserID,
// signedKey); used to walk trust forward from a root identity.
func (r *KeyTrustRepo) LinksForSignedKey(ctx context.Context, signedUserID, signedKey string) ([]domain.KeyChainLink, error) {
	var rows []keyChainLinkRow
	err := r.db.conn.SelectContext(ctx, &rows, `
		SELECT id, signing_user_id, signing_key, signed_user_id, signed_key
		FROM key_chain_links
		WHERE signed_user_id = ? AND signed_key = ?`,
		signedUserID, signedKey)
	if err != nil {
		return nil, fmt.Errorf("links for signed key: %w", err)
	}
	links := make([]domain.KeyChainLink, len(rows))
	for i, row := range rows {
		links[i] = domain.KeyChainLink{
			ID:            row.ID,
			SigningUserID: row.SigningUserID,
			SigningKey:    row.SigningKey,
			SignedUserID:  row.SignedUserID,
			SignedKey:     row.SignedKey,
		}
	}
	return links, nil
}

// DeleteLinks purges the whole graph. Account reset only.
func (r *KeyTrustRepo) DeleteLinks(ctx context.Context) error {
	if _, err := r.db.conn.ExecContext(ctx, `DELETE FROM key_chain_links`); err != nil {
		return fmt.Errorf("delete key chain links: %w", err)
	}
	return nil
}

// PutDeviceKey replaces the stored payload and trust level for
// (UserID, KeyLabel).
func (r *KeyTrustRepo) PutDeviceKey(ctx context.Context, dk domain.DeviceKey) error {
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO device_keys (id, user_id, key_label, signed_payload, trust_level)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			signed_payload = excluded.signed_payload,
			trust_level = excluded.trust_level`,
		domain.DeriveDeviceKeyID(dk.UserID, dk.KeyLabel),
		dk.UserID, dk.KeyLabel, dk.SignedPayload, dk.TrustLevel,
	)
	if err != nil {
		return fmt.Errorf("put device key: %w", err)
	}
	return nil
}

// GetDeviceKey returns the stored record for (userID, keyLabel), if any.
func (r *KeyTrustRepo) GetDeviceKey(ctx context.Context, userID, keyLabel string) (domain.DeviceKey, bool, error) {
	var row deviceKeyRow
	err := r.db.conn.GetContext(ctx, &row, `
		SELECT id, user_id, key_label, signed_payload, trust_level
		FROM device_keys WHERE id = ?`,
		domain.DeriveDeviceKeyID(userID, keyLabel))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DeviceKey{}, false, nil
	}
	if err != nil {
		return domain.DeviceKey{}, false, fmt.Errorf("get device key: %w", err)
	}
	return domain.DeviceKey{
		UserID:        row.UserID,
		KeyLabel:      row.KeyLabel,
		SignedPayload: row.SignedPayload,
		TrustLevel:    row.TrustLevel,
	}, true, nil
}

// MarkOutdated flags userID's key data as stale until re-fetched.
func (r *KeyTrustRepo) MarkOutdated(ctx context.Context, userID string) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO outdated_keys (user_id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("mark outdated: %w", err)
	}
	return nil
}

// ClearOutdated removes the stale flag for userID.
func (r *KeyTrustRepo) ClearOutdated(ctx context.Context, userID string) error {
	_, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM outdated_keys WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("clear outdated: %w", err)
	}
	return nil
}

// IsOutdated reports whether userID's key data is flagged stale.
func (r *KeyTrustRepo) IsOutdated(ctx context.Context, userID string) (bool, error) {
	var n int
	err := r.db.conn.GetContext(ctx, &n,
		`SELECT count(*) FROM outdated_keys WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("is outdated: %w", err)
	}
	return n > 0, nil
}

// Compile-time assertion that KeyTrustRepo implements domain.KeyTrustStore.
var _ domain.KeyTrustStore = (*KeyTrustRepo)(nil)
