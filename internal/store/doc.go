// Package store provides SQLCipher-backed persistence for Olm/Megolm
// session state.
//
// It contains concrete implementations of the domain storage interfaces,
// backed by one encrypted SQLite database per account. All methods are safe
// for concurrent use; each write is a single transaction so a cancelled or
// crashed call never leaves a partially-written row.
//
// The package includes stores for:
//   - Olm sessions (OlmSessionRepo)
//   - Inbound/outbound Megolm sessions (MegolmSessionRepo)
//   - Megolm message indices, the replay ledger (MessageIndexRepo)
//   - Key-chain links, device keys and outdated-key markers (KeyTrustRepo)
package store
