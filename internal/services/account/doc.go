// Package account creates and loads per-account encrypted stores.
//
// It owns the create/load state machine: Create mints a fresh 32-byte key
// and a new store, Load reopens an existing one with a previously-issued
// key. The service never persists key material itself; callers hand the key
// to a keyring.SecretStore.
package account
