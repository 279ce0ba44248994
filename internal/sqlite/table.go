package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

// Table implements types.Table for one entity type.
type Table[T any] struct {
	backend *Backend
	meta    entityMeta[T]
}

var _ types.Table[*types.Contact] = (*Table[*types.Contact])(nil)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Get returns the entity stored under key.
func (t *Table[T]) Get(key string) (T, error) {
	var zero T
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return zero, types.ErrBackendDetached
	}

	var data string
	err := t.backend.db.QueryRow(
		"SELECT data FROM "+t.meta.table+" WHERE name = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %q: %w", t.meta.table, key, types.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("querying %s: %w", t.meta.table, err)
	}
	return t.decode(data)
}

// Set creates or replaces the entity under key. A new entity gets a UUID v7
// and CreatedAt unless already set; a replaced one keeps the stored ID,
// CreatedAt and position.
func (t *Table[T]) Set(key string, item T) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}
	if key == "" {
		return types.ErrInvalidName
	}
	if name := t.meta.key(item); name != key {
		return fmt.Errorf("%w: key %q does not match name %q", types.ErrValidation, key, name)
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id, created string
	err = tx.QueryRow(
		"SELECT entity_id, created_at FROM "+t.meta.table+" WHERE name = ?", key).Scan(&id, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		var pos int
		if err := tx.QueryRow(
			"SELECT COALESCE(MAX(position), -1) + 1 FROM " + t.meta.table).Scan(&pos); err != nil {
			return fmt.Errorf("reading next position: %w", err)
		}
		if err := t.insert(tx, key, item, pos); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("querying %s: %w", t.meta.table, err)
	default:
		*t.meta.id(item) = id
		if ts := t.meta.created(item); ts.IsZero() {
			if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
				*ts = parsed
			}
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding %s entity: %w", t.meta.table, err)
		}
		if _, err := tx.Exec(
			"UPDATE "+t.meta.table+" SET data = ? WHERE name = ?", string(data), key); err != nil {
			return fmt.Errorf("updating %s: %w", t.meta.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", t.meta.table, err)
	}
	return t.persist()
}

// Delete removes the entity stored under key.
func (t *Table[T]) Delete(key string) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}

	res, err := t.backend.db.Exec("DELETE FROM "+t.meta.table+" WHERE name = ?", key)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", t.meta.table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %q: %w", t.meta.table, key, types.ErrNotFound)
	}
	return t.persist()
}

// Rename replaces the entity under key with item stored under item's name,
// at the end of the order. The stored ID and CreatedAt carry over when item
// has none. Both steps share one transaction and one JSONL write.
func (t *Table[T]) Rename(key string, item T) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}
	newKey := t.meta.key(item)
	if newKey == "" {
		return types.ErrInvalidName
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id, created string
	err = tx.QueryRow(
		"SELECT entity_id, created_at FROM "+t.meta.table+" WHERE name = ?", key).Scan(&id, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", t.meta.table, key, types.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("querying %s: %w", t.meta.table, err)
	}
	if newKey != key {
		var n int
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM "+t.meta.table+" WHERE name = ?", newKey).Scan(&n); err != nil {
			return fmt.Errorf("querying %s: %w", t.meta.table, err)
		}
		if n > 0 {
			return fmt.Errorf("%s %q: %w", t.meta.table, newKey, types.ErrAlreadyExists)
		}
	}

	if p := t.meta.id(item); *p == "" {
		*p = id
	}
	if ts := t.meta.created(item); ts.IsZero() {
		if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
			*ts = parsed
		}
	}
	if _, err := tx.Exec("DELETE FROM "+t.meta.table+" WHERE name = ?", key); err != nil {
		return fmt.Errorf("deleting from %s: %w", t.meta.table, err)
	}
	var pos int
	if err := tx.QueryRow(
		"SELECT COALESCE(MAX(position), -1) + 1 FROM " + t.meta.table).Scan(&pos); err != nil {
		return fmt.Errorf("reading next position: %w", err)
	}
	if err := t.insert(tx, newKey, item, pos); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", t.meta.table, err)
	}
	return t.persist()
}

// Has reports whether key is stored.
func (t *Table[T]) Has(key string) (bool, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return false, types.ErrBackendDetached
	}

	var n int
	if err := t.backend.db.QueryRow(
		"SELECT COUNT(*) FROM "+t.meta.table+" WHERE name = ?", key).Scan(&n); err != nil {
		return false, fmt.Errorf("querying %s: %w", t.meta.table, err)
	}
	return n > 0, nil
}

// All returns every entity in insertion order.
func (t *Table[T]) All() ([]T, error) {
	return t.Filter(nil)
}

// Filter returns the entities for which keep returns true, in insertion
// order. A nil keep selects everything.
func (t *Table[T]) Filter(keep func(T) bool) ([]T, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrBackendDetached
	}

	rows, err := t.rows()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, data := range rows {
		item, err := t.decode(string(data))
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Replace discards the stored entities and stores items in order, keyed by
// their names. Duplicate names fail the whole replacement.
func (t *Table[T]) Replace(items []T) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + t.meta.table); err != nil {
		return fmt.Errorf("clearing %s: %w", t.meta.table, err)
	}
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		key := t.meta.key(item)
		if seen[key] {
			return fmt.Errorf("%s %q: %w", t.meta.table, key, types.ErrAlreadyExists)
		}
		seen[key] = true
		if err := t.insert(tx, key, item, i); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", t.meta.table, err)
	}
	return t.persist()
}

// insert adds a new row, assigning an ID and CreatedAt when missing.
func (t *Table[T]) insert(exec execer, key string, item T, pos int) error {
	if id := t.meta.id(item); *id == "" {
		*id = generateUUID()
	}
	created := t.meta.created(item)
	if created.IsZero() {
		*created = t.backend.now().UTC()
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding %s entity: %w", t.meta.table, err)
	}
	_, err = exec.Exec(
		"INSERT INTO "+t.meta.table+" (entity_id, name, position, data, created_at) VALUES (?, ?, ?, ?, ?)",
		*t.meta.id(item), key, pos, string(data), created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", t.meta.table, err)
	}
	return nil
}

// rows returns the stored JSON documents in insertion order.
func (t *Table[T]) rows() ([]json.RawMessage, error) {
	rs, err := t.backend.db.Query("SELECT data FROM " + t.meta.table + " ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.meta.table, err)
	}
	defer rs.Close()

	var out []json.RawMessage
	for rs.Next() {
		var data string
		if err := rs.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.meta.table, err)
		}
		out = append(out, json.RawMessage(data))
	}
	return out, rs.Err()
}

func (t *Table[T]) decode(data string) (T, error) {
	item, err := t.meta.decode([]byte(data))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("decoding %s entity: %w", t.meta.table, err)
	}
	return item, nil
}

func (t *Table[T]) path() string {
	return filepath.Join(t.backend.config.DataDir, t.meta.file)
}

// persist rewrites the JSONL file from SQLite. The caller holds the write
// lock.
func (t *Table[T]) persist() error {
	rows, err := t.rows()
	if err != nil {
		return err
	}
	if err := writeJSONL(t.path(), rows); err != nil {
		return fmt.Errorf("persisting %s: %w", t.meta.file, err)
	}
	return nil
}
