// Package keyring holds the database encryption keys outside the stores
// they protect.
//
// SecretStore is the capability interface; platform-native secret storage
// (Android Keystore, macOS Keychain, ...) plugs in behind it. FileSecretStore
// is the portable default: each secret is sealed under a passphrase with
// scrypt + ChaCha20-Poly1305 and written to its own 0600 file.
package keyring
