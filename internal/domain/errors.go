package domain

import "errors"

// Fatal store-open conditions. Each aborts account setup entirely; none is
// retried inside this layer, and none may be conflated with a network error
// when surfaced to the user.
var (
	// ErrMissingEncryptionKey means a store load was attempted without key
	// material.
	ErrMissingEncryptionKey = errors.New("missing encryption key for account store")

	// ErrInvalidKeySize means the supplied key is not the required length.
	ErrInvalidKeySize = errors.New("encryption key has invalid size")

	// ErrEncryptionUnsupported means the storage engine did not verifiably
	// apply encryption after open (wrong key, or a build without cipher
	// support). The store never falls back to unencrypted operation.
	ErrEncryptionUnsupported = errors.New("storage engine does not enforce encryption")

	// ErrStoreExists means Create was called for an account that already has
	// an on-disk store; re-keying an existing store is never done silently.
	ErrStoreExists = errors.New("account store already exists")
)

// ErrReplayDetected means a second, distinct event claimed an already-used
// Megolm message index. The caller must refuse to accept the message.
var ErrReplayDetected = errors.New("megolm message index already used by a different event")

// ErrMigrationFailure means a schema migration step could not complete. The
// on-disk store remains at its last fully-migrated version.
var ErrMigrationFailure = errors.New("schema migration failed")
