package keyring

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// FileSecretStore seals secrets under a passphrase, one file per secret.
type FileSecretStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileSecretStore returns a FileSecretStore rooted at dir.
func NewFileSecretStore(dir, passphrase string) *FileSecretStore {
	return &FileSecretStore{dir: dir, passphrase: passphrase}
}

// Get decrypts and returns the named secret, if present.
func (s *FileSecretStore) Get(name string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	raw, err := decrypt(s.passphrase, blob)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Put seals value and writes it via a temp file then rename.
func (s *FileSecretStore) Put(name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	blob, err := encrypt(s.passphrase, value)
	if err != nil {
		return err
	}
	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete removes the named secret. Deleting an absent secret is not an
// error.
func (s *FileSecretStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// path hashes the secret name so account ids with '@' and ':' stay
// filesystem-safe.
func (s *FileSecretStore) path(name string) string {
	sum := sha256.Sum256([]byte(name))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".enc")
}

// Compile-time assertion that FileSecretStore implements SecretStore.
var _ SecretStore = (*FileSecretStore)(nil)
