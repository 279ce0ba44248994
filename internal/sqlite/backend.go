// Package sqlite implements the storage backend. JSONL files in the data
// directory are the source of truth; on Attach they are loaded into a fresh
// SQLite database that serves queries. Every write updates SQLite and then
// rewrites the affected JSONL file atomically.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

// DatabaseFile is the SQLite file created in the data directory. It is
// rebuilt from the JSONL files on every Attach.
const DatabaseFile = "assistant.db"

// Backend owns the database connection and the entity tables. Writers hold
// the lock exclusively, readers share it.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger
	now      func() time.Time

	contacts *Table[*types.Contact]
	notes    *Table[*types.Note]
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp CreatedAt on new entities.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the backend on config.DataDir, creating the directory and
// empty JSONL files as needed, and loads the JSONL files into SQLite.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
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
	config.DataDir = dataDir

	dbPath := filepath.Join(dataDir, DatabaseFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps SQLite writes serialized with our lock.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL(types.StandardTableNames...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.contacts = &Table[*types.Contact]{backend: b, meta: contactMeta}
	b.notes = &Table[*types.Note]{backend: b, meta: noteMeta}

	if err := b.contacts.load(); err != nil {
		b.closeLocked()
		return fmt.Errorf("load %s: %w", contactMeta.file, err)
	}
	if err := b.notes.load(); err != nil {
		b.closeLocked()
		return fmt.Errorf("load %s: %w", noteMeta.file, err)
	}

	b.attached = true
	b.logger.Debug("backend attached", "data_dir", dataDir)
	return nil
}

// Detach closes the database. Detach is idempotent. After Detach every table
// operation returns ErrBackendDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	return b.closeLocked()
}

func (b *Backend) closeLocked() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Contacts returns the contacts table.
func (b *Backend) Contacts() (types.Table[*types.Contact], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.contacts, nil
}

// Notes returns the notes table.
func (b *Backend) Notes() (types.Table[*types.Note], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.notes, nil
}

// DataDir returns the directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
