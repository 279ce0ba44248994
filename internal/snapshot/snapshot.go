// Package snapshot saves and restores whole tables as named JSON files.
//
// A snapshot name is stamped with the save time (name_YYYYMMDD_HHMMSS.json)
// and made unique with a _N suffix. Saving content identical to the last
// snapshot saved or loaded by the same Store writes nothing and returns the
// previous name.
package snapshot

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

// Extension is the file extension of snapshot files.
const Extension = ".json"

// StampLayout is appended to snapshot names on save.
const StampLayout = "20060102_150405"

// DefaultName is used when Save is called from places that do not ask the
// user for a name.
const DefaultName = "autosave"

// Snapshot errors.
var (
	ErrInvalidName = fmt.Errorf("snapshot name cannot be empty or contain a path: %w", types.ErrValidation)
	ErrEmpty       = fmt.Errorf("nothing to save: %w", types.ErrValidation)
	ErrNoSnapshots = fmt.Errorf("no snapshots available: %w", types.ErrNotFound)
)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used for name stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Store keeps snapshots of []T in one directory.
type Store[T any] struct {
	dir  string
	opts options

	mu       sync.Mutex
	lastHash string
	lastName string
}

// New returns a Store over dir, creating the directory if needed.
func New[T any](dir string, opts ...Option) (*Store[T], error) {
	o := options{logger: slog.New(slog.DiscardHandler), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	o.logger = o.logger.With("component", "snapshot", "dir", dir)
	return &Store[T]{dir: dir, opts: o}, nil
}

// Dir returns the snapshot directory.
func (s *Store[T]) Dir() string { return s.dir }

// Save writes items under a stamped, unique file name and returns that name.
// A name that already ends in Extension is used without a stamp.
func (s *Store[T]) Save(name string, items []T) (string, error) {
	name = strings.TrimSpace(name)
	if err := validName(name); err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrEmpty
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	sum := contentHash(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sum == s.lastHash && s.lastName != "" {
		s.opts.logger.Debug("snapshot unchanged", "name", s.lastName)
		return s.lastName, nil
	}

	if !strings.HasSuffix(name, Extension) {
		name = name + "_" + s.opts.now().Format(StampLayout) + Extension
	}
	name = s.uniqueName(name)
	if err := writeAtomic(filepath.Join(s.dir, name), data); err != nil {
		return "", err
	}
	s.lastHash, s.lastName = sum, name
	s.opts.logger.Debug("snapshot saved", "name", name, "items", len(items))
	return name, nil
}

// Load reads the snapshot called name. The Extension may be omitted.
func (s *Store[T]) Load(name string) ([]T, error) {
	file, err := s.fileName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("snapshot %q: %w", file, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding snapshot %q: %w", file, err)
	}

	// Compare against the canonical encoding so that saving the loaded
	// items unchanged is a no-op.
	canonical, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	s.mu.Lock()
	s.lastHash, s.lastName = contentHash(canonical), file
	s.mu.Unlock()

	s.opts.logger.Debug("snapshot loaded", "name", file, "items", len(items))
	return items, nil
}

// Has reports whether a snapshot called name exists.
func (s *Store[T]) Has(name string) bool {
	file, err := s.fileName(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, file))
	return err == nil && info.Mode().IsRegular()
}

// Delete removes the snapshot called name.
func (s *Store[T]) Delete(name string) error {
	file, err := s.fileName(name)
	if err != nil {
		return err
	}
	if !s.Has(file) {
		return fmt.Errorf("snapshot %q: %w", file, types.ErrNotFound)
	}
	if err := os.Remove(filepath.Join(s.dir, file)); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}

	s.mu.Lock()
	if s.lastName == file {
		s.lastHash, s.lastName = "", ""
	}
	s.mu.Unlock()
	return nil
}

// List returns the snapshot file names matching pattern, sorted. An empty
// pattern matches every snapshot. Patterns use doublestar syntax and are
// matched against file names in the snapshot directory.
func (s *Store[T]) List(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*" + Extension
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", types.ErrValidation, pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(s.dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasSuffix(m, Extension) && !strings.Contains(m, "/") {
			names = append(names, m)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Latest returns the most recently saved snapshot. Stamped names are ordered
// by their stamp and _N suffix; names without a stamp use the file's
// modification time.
func (s *Store[T]) Latest() (string, error) {
	names, err := s.List("")
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoSnapshots
	}

	type entry struct {
		name string
		at   time.Time
		seq  int
	}
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		at, seq, ok := parseStamp(name)
		if !ok {
			info, err := os.Stat(filepath.Join(s.dir, name))
			if err != nil {
				return "", fmt.Errorf("reading snapshot info: %w", err)
			}
			at = info.ModTime()
		}
		entries = append(entries, entry{name: name, at: at, seq: seq})
	}
	latest := slices.MaxFunc(entries, func(a, b entry) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		if c := cmp.Compare(a.seq, b.seq); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return latest.name, nil
}

var stampPattern = regexp.MustCompile(`_(\d{8}_\d{6})(?:_(\d+))?$`)

// parseStamp extracts the save stamp and uniqueness suffix from a file name.
func parseStamp(name string) (time.Time, int, bool) {
	m := stampPattern.FindStringSubmatch(strings.TrimSuffix(name, Extension))
	if m == nil {
		return time.Time{}, 0, false
	}
	at, err := time.ParseInLocation(StampLayout, m[1], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	seq := 0
	if m[2] != "" {
		seq, _ = strconv.Atoi(m[2])
	}
	return at, seq, true
}

// fileName validates name and adds the Extension when missing.
func (s *Store[T]) fileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validName(name); err != nil {
		return "", err
	}
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}
	return name, nil
}

// uniqueName appends _1, _2, ... before the extension until the name is free.
func (s *Store[T]) uniqueName(name string) string {
	if !s.Has(name) {
		return name
	}
	stem := strings.TrimSuffix(name, Extension)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, Extension)
		if !s.Has(candidate) {
			return candidate
		}
	}
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeAtomic writes data to a temp file next to path and renames it over
// path.
func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	return nil
}
