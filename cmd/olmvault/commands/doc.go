// Package commands implements the olmvault CLI subcommands for creating,
// inspecting and wiping per-account encrypted session stores.
package commands
