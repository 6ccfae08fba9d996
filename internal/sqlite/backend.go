// Package sqlite is the storage backend of the reference rentals server.
// JSONL files in the data directory are the source of truth; SQLite is the
// query engine. Attach rebuilds the database from the files and every write
// rewrites the affected file atomically.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// dbFileName is the SQLite file inside the data directory. It is rebuilt
// from the JSONL files on every Attach.
const dbFileName = "rentals.db"

// timeLayout is the fixed-width UTC text format of stored timestamps, so
// they compare in time order as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// Backend stores apartments, contracts, users and tokens.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.StoreConfig
	dataDir  string
	db       *sql.DB
	now      func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock replaces the time source used for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// NewBackend returns a detached backend. Call Attach before use.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach creates the data directory if needed, builds the schema and loads
// the JSONL files. It returns ErrAlreadyAttached on a second call.
func (b *Backend) Attach(config types.StoreConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.attached = true
	return nil
}

// Detach closes the database. It is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// Config returns the configuration passed to Attach.
func (b *Backend) Config() types.StoreConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// initJSONLFiles creates empty JSONL files that do not exist yet.
func initJSONLFiles(dataDir string) error {
	for _, t := range jsonlTables {
		if _, err := os.Stat(t.path(dataDir)); err == nil {
			continue
		}
		if err := t.writeRecords(dataDir, nil); err != nil {
			return fmt.Errorf("creating %s: %w", t.file, err)
		}
	}
	return nil
}

// read runs fn under the read lock.
func (b *Backend) read(fn func(db *sql.DB) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrBackendDetached
	}
	return fn(b.db)
}

// write runs fn in a transaction and, once committed, rewrites the JSONL
// files of the named tables.
func (b *Backend) write(fn func(tx *sql.Tx) error, tables ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrBackendDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	for _, table := range tables {
		t, err := lookupTable(table)
		if err != nil {
			return err
		}
		if err := b.persistTable(b.db, t); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) timestamp() string {
	return b.now().UTC().Format(timeLayout)
}

// generateUUID returns a UUID v7, falling back to v4.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
