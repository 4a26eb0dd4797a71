package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mutecomm/go-sqlcipher/v4" // registers the "sqlite3" driver with SQLCipher linked in
	"github.com/sirupsen/logrus"

	"olmvault/internal/domain"
)

// KeySize is the required length of the raw database encryption key.
const KeySize = 32

// openMu serializes encrypted opens per database file. The driver's
// connect-plus-key handshake is not reentrant for the same file, so only the
// open itself is locked, never the store's lifetime.
var openMu = struct {
	sync.Mutex
	paths map[string]*sync.Mutex
}{paths: map[string]*sync.Mutex{}}

func pathLock(path string) *sync.Mutex {
	openMu.Lock()
	defer openMu.Unlock()
	mu, ok := openMu.paths[path]
	if !ok {
		mu = &sync.Mutex{}
		openMu.paths[path] = mu
	}
	return mu
}

// DB is an open, verified, migrated encrypted database.
type DB struct {
	conn *sqlx.DB
	path string
}

// Open opens (or creates) the encrypted database at path using key, verifies
// that the engine actually enforces encryption, and applies any pending
// schema migrations.
//
// A nil key fails with ErrMissingEncryptionKey and a key of the wrong length
// with ErrInvalidKeySize. If the engine does not prove cipher support, or the
// key cannot decrypt an existing file, Open fails with
// ErrEncryptionUnsupported; there is no unencrypted fallback.
func Open(path string, key []byte) (*DB, error) {
	if len(key) == 0 {
		return nil, domain.ErrMissingEncryptionKey
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", domain.ErrInvalidKeySize, len(key), KeySize)
	}

	mu := pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	dsn := path + "?" + dsnParams(key)
	conn, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := verifyCipher(conn); err != nil {
		conn.Close()
		return nil, err
	}

	// Single writer; avoids SQLITE_BUSY between concurrent repositories.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"version": CurrentSchemaVersion,
	}).Debug("encrypted store opened")
	return db, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error { return d.conn.Close() }

// SchemaVersion reads the database's recorded schema version.
func (d *DB) SchemaVersion() (int, error) {
	var v int
	if err := d.conn.Get(&v, `PRAGMA user_version`); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// dsnParams builds the connection parameters carrying the raw key as a hex
// pragma. The key never touches disk; it exists only in the DSN handed to
// the driver.
func dsnParams(key []byte) string {
	v := url.Values{}
	v.Set("_pragma_key", "x'"+hex.EncodeToString(key)+"'")
	v.Set("_pragma_cipher_page_size", "4096")
	v.Set("_busy_timeout", "5000")
	v.Set("_foreign_keys", "on")
	v.Set("_journal_mode", "WAL")
	return v.Encode()
}

// verifyCipher fails closed unless the opened connection proves that
// encryption is active: the cipher must report a version, and the keyed
// connection must be able to read the schema table.
func verifyCipher(conn *sqlx.DB) error {
	var cipherVersion string
	err := conn.Get(&cipherVersion, `PRAGMA cipher_version`)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && cipherVersion == "") {
		return fmt.Errorf("%w: cipher_version pragma returned nothing", domain.ErrEncryptionUnsupported)
	}
	if err != nil {
		return fmt.Errorf("%w: cipher_version check: %v", domain.ErrEncryptionUnsupported, err)
	}

	// With a wrong key SQLCipher cannot read the file at all; the first real
	// read is where that surfaces.
	var n int
	if err := conn.Get(&n, `SELECT count(*) FROM sqlite_master`); err != nil {
		return fmt.Errorf("%w: keyed read failed: %v", domain.ErrEncryptionUnsupported, err)
	}
	return nil
}
