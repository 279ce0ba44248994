package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newAttachedBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, b.Attach(testConfig(dir)))
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

func contactsTable(t *testing.T, b *Backend) types.Table[*types.Contact] {
	t.Helper()
	tbl, err := b.Contacts()
	require.NoError(t, err)
	return tbl
}

func mustContact(t *testing.T, name string, phones ...string) *types.Contact {
	t.Helper()
	c, err := types.NewContact(name, phones...)
	require.NoError(t, err)
	return c
}

func contactNames(cs []*types.Contact) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Key()
	}
	return out
}

// --- Create ---

func TestTable_SetAssignsUUIDv7AndCreatedAt(t *testing.T) {
	b, _ := newAttachedBackend(t)
	tbl := contactsTable(t, b)

	c := mustContact(t, "John Doe", "+380991112233")
	require.NoError(t, tbl.Set(c.Key(), c))

	parsed, err := uuid.Parse(c.ContactID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, fixedNow, c.CreatedAt)

	got, err := tbl.Get("John Doe")
	require.NoError(t, err)
	assert.Equal(t, c.ContactID, got.ContactID)
	assert.Equal(t, c.Phones, got.Phones)
	assert.True(t, fixedNow.Equal(got.CreatedAt))
}

func TestTable_SetPersistsToJSONL(t *testing.T) {
	b, dir := newAttachedBackend(t)
	tbl := contactsTable(t, b)

	require.NoError(t, tbl.Set("Jane", mustContact(t, "Jane")))

	content, err := os.ReadFile(filepath.Join(dir, "contacts.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"name":"Jane"`)
}

func TestTable_SetRejectsMismatchedKey(t *testing.T) {
	b, _ := newAttachedBackend(t)
	err := contactsTable(t, b).Set("other", mustContact(t, "Jane"))
	assert.ErrorIs(t, err, types.ErrValidation)
}

// --- Read ---

func TestTable_GetMissing(t *testing.T) {
	b, _ := newAttachedBackend(t)
	_, err := contactsTable(t, b).Get("nobody")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTable_HasAndDelete(t *testing.T) {
	b, _ := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	require.NoError(t, tbl.Set("A", mustContact(t, "A")))

	ok, err := tbl.Has("A")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, tbl.Delete("A"))
	ok, err = tbl.Has("A")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, tbl.Delete("A"), types.ErrNotFound)
}

// --- Ordering ---

func TestTable_InsertionOrder(t *testing.T) {
	b, _ := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	for _, n := range []string{"C", "A", "B"} {
		require.NoError(t, tbl.Set(n, mustContact(t, n)))
	}

	all, err := tbl.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, contactNames(all))
}

func TestTable_UpdateKeepsPositionAndIdentity(t *testing.T) {
	b, _ := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	for _, n := range []string{"A", "B", "C"} {
		require.NoError(t, tbl.Set(n, mustContact(t, n)))
	}
	orig, err := tbl.Get("A")
	require.NoError(t, err)

	updated, err := orig.Update().AddEmail("a@example.com").Build()
	require.NoError(t, err)
	updated.ContactID = ""
	require.NoError(t, tbl.Set("A", updated))

	all, err := tbl.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, contactNames(all))
	assert.Equal(t, orig.ContactID, all[0].ContactID)
	assert.Len(t, all[0].Emails, 1)
}

func TestTable_RenameMovesToEnd(t *testing.T) {
	b, _ := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	for _, n := range []string{"A", "B", "C"} {
		require.NoError(t, tbl.Set(n, mustContact(t, n)))
	}

	a, err := tbl.Get("A")
	require.NoError(t, err)
	renamed, err := a.Update().SetName("Z").Build()
	require.NoError(t, err)
	renamed.ContactID = ""
	require.NoError(t, tbl.Rename("A", renamed))

	all, err := tbl.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "Z"}, contactNames(all))
	assert.Equal(t, a.ContactID, all[2].ContactID)
	assert.True(t, a.CreatedAt.Equal(all[2].CreatedAt))

	has, err := tbl.Has("A")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTable_RenameFailureKeepsOriginal(t *testing.T) {
	b, dir := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	for _, n := range []string{"A", "B"} {
		require.NoError(t, tbl.Set(n, mustContact(t, n)))
	}
	before, err := os.ReadFile(filepath.Join(dir, contactMeta.file))
	require.NoError(t, err)

	err = tbl.Rename("A", mustContact(t, "B"))
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
	err = tbl.Rename("missing", mustContact(t, "Q"))
	assert.ErrorIs(t, err, types.ErrNotFound)

	all, err := tbl.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, contactNames(all))
	after, err := os.ReadFile(filepath.Join(dir, contactMeta.file))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestTable_RenamePersistsOnce(t *testing.T) {
	b, dir := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	require.NoError(t, tbl.Set("A", mustContact(t, "A")))
	require.NoError(t, tbl.Rename("A", mustContact(t, "Z")))

	data, err := os.ReadFile(filepath.Join(dir, contactMeta.file))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"name":"Z"`)
}

func TestTable_Filter(t *testing.T) {
	b, _ := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	require.NoError(t, tbl.Set("Ann", mustContact(t, "Ann", "1")))
	require.NoError(t, tbl.Set("Bob", mustContact(t, "Bob")))
	require.NoError(t, tbl.Set("Amy", mustContact(t, "Amy", "2")))

	got, err := tbl.Filter(func(c *types.Contact) bool { return len(c.Phones) > 0 })
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Amy"}, contactNames(got))
}

func TestTable_Replace(t *testing.T) {
	b, _ := newAttachedBackend(t)
	tbl := contactsTable(t, b)
	require.NoError(t, tbl.Set("Old", mustContact(t, "Old")))

	require.NoError(t, tbl.Replace([]*types.Contact{mustContact(t, "X"), mustContact(t, "Y")}))
	all, err := tbl.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, contactNames(all))

	err = tbl.Replace([]*types.Contact{mustContact(t, "D"), mustContact(t, "D")})
	assert.ErrorIs(t, err, types.ErrAlreadyExists)

	all, err = tbl.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, contactNames(all), "failed replace leaves table untouched")
}

// --- Persistence round trip ---

func TestTable_ReloadFromJSONL(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(testConfig(dir)))

	notes, err := b.Notes()
	require.NoError(t, err)
	tag, err := types.NewTag("work", "#FF0000")
	require.NoError(t, err)
	n, err := types.NewNote("plan", "Plan", "write the quarterly plan", tag)
	require.NoError(t, err)
	require.NoError(t, notes.Set(n.Key(), n))
	contacts, err := b.Contacts()
	require.NoError(t, err)
	require.NoError(t, contacts.Set("B", mustContact(t, "B")))
	require.NoError(t, contacts.Set("A", mustContact(t, "A")))
	require.NoError(t, b.Detach())

	// The database is rebuilt from JSONL on attach.
	require.NoError(t, os.Remove(filepath.Join(dir, DatabaseFile)))

	b2 := NewBackend()
	require.NoError(t, b2.Attach(testConfig(dir)))
	defer b2.Detach()

	notes2, err := b2.Notes()
	require.NoError(t, err)
	got, err := notes2.Get("plan")
	require.NoError(t, err)
	assert.Equal(t, n.NoteID, got.NoteID)
	assert.Equal(t, n.Tags, got.Tags)

	contacts2, err := b2.Contacts()
	require.NoError(t, err)
	all, err := contacts2.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, contactNames(all))
}

func TestTable_LoadSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		`{"contact_id":"id-1","name":"Good","phones":["+380991112233"],"emails":null,"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`,
		`not json at all`,
		`{"contact_id":"id-2","name":"","phones":[]}`,
		`{"contact_id":"id-3","name":"Bad email","emails":["nope"]}`,
		`{"contact_id":"id-4","name":"Good","phones":[]}`,
		`{"name":"No id"}`,
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contacts.jsonl"),
		[]byte(strings.Join(lines, "\n")+"\n"), 0o644))

	b := NewBackend(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, b.Attach(testConfig(dir)))
	defer b.Detach()

	all, err := contactsTable(t, b).All()
	require.NoError(t, err)
	require.Equal(t, []string{"Good", "No id"}, contactNames(all))
	assert.Equal(t, "id-1", all[0].ContactID)
	assert.NotEmpty(t, all[1].ContactID, "missing id is assigned on load")
	assert.True(t, fixedNow.Equal(all[1].CreatedAt))

	// The file is rewritten without the skipped lines.
	content, err := os.ReadFile(filepath.Join(dir, "contacts.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\n"))
	assert.NotContains(t, string(content), "not json")
}
