package app

import (
	"path/filepath"

	"olmvault/internal/keyring"
	"olmvault/internal/paths"
	"olmvault/internal/services/account"
)

// Wire bundles the stores and services for the CLI.
type Wire struct {
	Accounts *account.Service
	Keyring  keyring.SecretStore
	Paths    *paths.Resolver
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) *Wire {
	resolver := paths.NewResolver(cfg.Root)
	secrets := keyring.NewFileSecretStore(filepath.Join(cfg.Root, "secrets"), cfg.Passphrase)

	return &Wire{
		Accounts: account.New(resolver),
		Keyring:  secrets,
		Paths:    resolver,
	}
}
