package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// OlmSession is one pairwise double-ratchet channel with a peer device.
//
// Pickled is the sole authoritative state; every other field is metadata
// used for selection and eviction.
type OlmSession struct {
	SenderKey  string // peer Curve25519 identity key
	SessionID  string
	CreatedAt  int64 // unix millis
	LastUsedAt int64 // unix millis, bumped on every encrypt/decrypt
	Pickled    string
	Initiated  bool // true if this device started the session
}

// InboundMegolmSession is a group session this device can decrypt with.
type InboundMegolmSession struct {
	SenderKey        string // Curve25519
	SenderSigningKey string // Ed25519
	SessionID        string
	RoomID           string
	FirstKnownIndex  int64
	// HasBeenBackedUp records whether the session was uploaded to key backup.
	HasBeenBackedUp bool
	// IsTrusted asserts only that the delivery channel was trusted. It must
	// never be upgraded implicitly; only an explicit trusted delivery
	// (e.g. verified key backup) may set it.
	IsTrusted          bool
	ForwardingKeyChain []string // Curve25519 keys the session was forwarded through
	Pickled            string
}

// OutboundMegolmSession is the sending side's current group session for a room.
type OutboundMegolmSession struct {
	RoomID    string
	CreatedAt int64 // unix millis
	// EncryptedMessageCount increases monotonically until the session is
	// rotated. Rotation policy lives in the engine, not here.
	EncryptedMessageCount int64
	// NewDevices maps a user id to devices that have not yet been given the
	// room key. Cleared only after delivery is confirmed.
	NewDevices map[string][]string
	Pickled    string
}

// MessageIndex is one replay-ledger entry: the event that used a given
// ratchet position of a Megolm session.
type MessageIndex struct {
	RoomID          string
	SessionID       string
	MessageIndex    int64
	EventID         string
	OriginTimestamp int64 // unix millis
}

// KeyChainLink is an edge in the cross-signing trust graph: signing key
// vouches for signed key. Edges are append-only.
type KeyChainLink struct {
	ID            string // random row id
	SigningUserID string
	SigningKey    string
	SignedUserID  string
	SignedKey     string
}

// DeviceKey holds the last fetched signed device-keys payload for one
// (user, key label) pair, plus the last computed trust level.
type DeviceKey struct {
	UserID        string
	KeyLabel      string
	SignedPayload string // raw signed JSON, stored opaquely
	TrustLevel    string
}

// DeriveOlmSessionID returns the row identifier for an Olm session: the
// sender key, or a random id when the key is absent.
func DeriveOlmSessionID(senderKey string) string {
	if senderKey == "" {
		return uuid.NewString()
	}
	return senderKey
}

// DeriveInboundSessionID returns the composite identifier for an inbound
// Megolm session.
func DeriveInboundSessionID(roomID, sessionID string) string {
	return roomID + sessionID
}

// DeriveOutboundSessionID returns the row identifier for an outbound Megolm
// session: the room id, or a random id when blank.
func DeriveOutboundSessionID(roomID string) string {
	if roomID == "" {
		return uuid.NewString()
	}
	return roomID
}

// DeriveMessageIndexID returns the composite identifier for a message-index
// ledger entry.
func DeriveMessageIndexID(roomID, sessionID string, index int64) string {
	return fmt.Sprintf("%s-%s-%d", roomID, sessionID, index)
}

// DeriveDeviceKeyID returns the composite identifier for a device-key row.
func DeriveDeviceKeyID(userID, keyLabel string) string {
	return userID + "_" + keyLabel
}
