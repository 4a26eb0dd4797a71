package domain

import "context"

// OlmSessionStore persists pairwise Olm sessions.
//
// Lookups return (zero, false, nil) when no row exists; absence is not an
// error. Every upsert is one atomic transaction covering the pickled blob
// and its metadata.
type OlmSessionStore interface {
	UpsertOlmSession(ctx context.Context, s OlmSession) error
	GetOlmSession(ctx context.Context, senderKey string) (OlmSession, bool, error)
}

// InboundMegolmSessionStore persists inbound group sessions, keyed by
// (roomID, sessionID).
type InboundMegolmSessionStore interface {
	UpsertInboundSession(ctx context.Context, s InboundMegolmSession) error
	GetInboundSession(ctx context.Context, roomID, sessionID string) (InboundMegolmSession, bool, error)
}

// OutboundMegolmSessionStore persists the at-most-one live outbound group
// session per room.
type OutboundMegolmSessionStore interface {
	UpsertOutboundSession(ctx context.Context, s OutboundMegolmSession) error
	GetOutboundSession(ctx context.Context, roomID string) (OutboundMegolmSession, bool, error)
}

// MessageIndexStore is the replay-detection ledger.
type MessageIndexStore interface {
	// RecordIndex claims (roomID, sessionID, index) for eventID. Repeating
	// the call with the same event id is an idempotent success; a different
	// event id for an already-claimed index returns ErrReplayDetected and
	// leaves the stored row untouched.
	RecordIndex(ctx context.Context, idx MessageIndex) error
	LookupIndex(ctx context.Context, roomID, sessionID string, index int64) (MessageIndex, bool, error)
}

// KeyTrustStore tracks the cross-signing trust graph, per-device key
// payloads and the stale-key set. Trust computation happens in the engine;
// this store only keeps the last computed values.
type KeyTrustStore interface {
	// AddLink appends an edge. Identical 4-tuples collapse to one edge.
	AddLink(ctx context.Context, link KeyChainLink) error
	LinksForSignedKey(ctx context.Context, signedUserID, signedKey string) ([]KeyChainLink, error)
	// DeleteLinks removes every edge; used on account reset only.
	DeleteLinks(ctx context.Context) error

	PutDeviceKey(ctx context.Context, dk DeviceKey) error
	GetDeviceKey(ctx context.Context, userID, keyLabel string) (DeviceKey, bool, error)

	MarkOutdated(ctx context.Context, userID string) error
	ClearOutdated(ctx context.Context, userID string) error
	IsOutdated(ctx context.Context, userID string) (bool, error)
}
