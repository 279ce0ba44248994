package sqlite

import (
	"fmt"
)

// load reads the table's JSONL file into SQLite in one transaction. Lines
// that are not valid JSON, do not decode into the entity, or repeat an
// earlier name are skipped. When anything was skipped or normalized the file
// is rewritten from the loaded rows. The caller holds the write lock.
func (t *Table[T]) load() error {
	path := t.path()
	if err := ensureFile(path); err != nil {
		return err
	}
	records, skipped, err := readJSONL(path)
	if err != nil {
		return err
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	dirty := false
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		item, err := t.meta.decode(rec)
		if err != nil {
			skipped++
			continue
		}
		key := t.meta.key(item)
		if seen[key] {
			skipped++
			continue
		}
		if *t.meta.id(item) == "" || t.meta.created(item).IsZero() {
			dirty = true
		}
		if err := t.insert(tx, key, item, len(seen)); err != nil {
			return err
		}
		seen[key] = true
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}

	logger := t.backend.logger.With("table", t.meta.table)
	if skipped > 0 {
		logger.Warn("skipped malformed records", "file", t.meta.file, "skipped", skipped)
	}
	logger.Debug("table loaded", "records", len(seen))

	if skipped > 0 || dirty {
		return t.persist()
	}
	return nil
}
