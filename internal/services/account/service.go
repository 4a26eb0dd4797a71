package account

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"olmvault/internal/domain"
	"olmvault/internal/paths"
	"olmvault/internal/store"
)

// Repositories bundles every store handle for one open account database.
// One account's handles are shared by the whole engine but never across
// accounts or across a logout/login of the same account.
type Repositories struct {
	OlmSessions      domain.OlmSessionStore
	InboundSessions  domain.InboundMegolmSessionStore
	OutboundSessions domain.OutboundMegolmSessionStore
	MessageIndices   domain.MessageIndexStore
	KeyTrust         domain.KeyTrustStore

	db *store.DB
}

// Close releases the underlying database. Handles must not be used after.
func (r *Repositories) Close() error { return r.db.Close() }

// SchemaVersion reports the open store's schema version.
func (r *Repositories) SchemaVersion() (int, error) { return r.db.SchemaVersion() }

// RowCounts reports per-table row counts; diagnostics only.
func (r *Repositories) RowCounts() (map[string]int, error) { return r.db.RowCounts() }

// Service is the per-account encrypted store factory.
type Service struct {
	resolver *paths.Resolver
}

// New returns a Service resolving account directories through resolver.
func New(resolver *paths.Resolver) *Service { return &Service{resolver: resolver} }

// Create makes a brand-new encrypted store for userID and returns the wired
// repositories together with the raw key.
//
// The caller owns the key: persist it in a secure secret store and wipe the
// returned slice when done. Create refuses to touch an account that already
// has a store on disk.
func (s *Service) Create(ctx context.Context, userID string) (*Repositories, []byte, error) {
	path, err := s.resolver.ForAccountDatabase(userID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrStoreExists, path)
	}

	key := make([]byte, store.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, fmt.Errorf("generate store key: %w", err)
	}

	repos, err := s.open(ctx, path, key)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithField("path", path).Info("created account store")
	return repos, key, nil
}

// Load reopens userID's existing store with a previously-issued key.
func (s *Service) Load(ctx context.Context, userID string, key []byte) (*Repositories, error) {
	if len(key) == 0 {
		return nil, domain.ErrMissingEncryptionKey
	}
	if len(key) != store.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d",
			domain.ErrInvalidKeySize, len(key), store.KeySize)
	}
	path, err := s.resolver.ForAccountDatabase(userID)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, path, key)
}

// Wipe deletes the account's on-disk state. Explicit account reset only.
func (s *Service) Wipe(userID string) error {
	dir := s.resolver.AccountDir(userID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("wipe account store: %w", err)
	}
	logrus.WithField("dir", dir).Info("wiped account store")
	return nil
}

func (s *Service) open(ctx context.Context, path string, key []byte) (*Repositories, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := store.Open(path, key)
	if err != nil {
		return nil, err
	}
	megolm := store.NewMegolmSessionRepo(db)
	return &Repositories{
		OlmSessions:      store.NewOlmSessionRepo(db),
		InboundSessions:  megolm,
		OutboundSessions: megolm,
		MessageIndices:   store.NewMessageIndexRepo(db),
		KeyTrust:         store.NewKeyTrustRepo(db),
		db:               db,
	}, nil
}
