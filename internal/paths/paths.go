package paths

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseFilename is the store file inside each account directory.
const DatabaseFilename = "crypto.db"

// Resolver maps a user identity to an isolated on-disk directory for that
// account's persisted state.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver rooted at root.
func NewResolver(root string) *Resolver { return &Resolver{root: root} }

// ForAccountDatabase returns the account's database file path, creating the
// directory if needed. The same user id always maps to the same path, and
// two distinct ids never collide: the directory name is the SHA-256 of the
// id, which also keeps Matrix ids (with '@' and ':') filesystem-safe.
func (r *Resolver) ForAccountDatabase(userID string) (string, error) {
	dir := r.AccountDir(userID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create account directory: %w", err)
	}
	return filepath.Join(dir, DatabaseFilename), nil
}

// AccountDir returns the account's directory without creating it.
func (r *Resolver) AccountDir(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return filepath.Join(r.root, "accounts", hex.EncodeToString(sum[:]))
}
