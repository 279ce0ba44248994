package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/assistant/internal/sqlite"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

var testToday = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func testClock() time.Time { return testToday }

func newBackend(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend(sqlite.WithClock(testClock))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func testOptions() []Option {
	return []Option{
		WithClock(testClock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func newContactService(t *testing.T) *ContactService {
	t.Helper()
	tbl, err := newBackend(t).Contacts()
	require.NoError(t, err)
	return NewContactService(tbl, testOptions()...)
}

func newNoteService(t *testing.T) *NoteService {
	t.Helper()
	tbl, err := newBackend(t).Notes()
	require.NoError(t, err)
	return NewNoteService(tbl, testOptions()...)
}
