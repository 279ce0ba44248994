package sqlite

import (
	"encoding/json"
	"time"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

// entityMeta describes how one entity type is stored.
type entityMeta[T any] struct {
	table   string
	file    string
	key     func(T) string
	id      func(T) *string
	created func(T) *time.Time
	decode  func([]byte) (T, error)
}

var contactMeta = entityMeta[*types.Contact]{
	table:   types.ContactsTable,
	file:    "contacts.jsonl",
	key:     (*types.Contact).Key,
	id:      func(c *types.Contact) *string { return &c.ContactID },
	created: func(c *types.Contact) *time.Time { return &c.CreatedAt },
	decode: func(b []byte) (*types.Contact, error) {
		var c types.Contact
		if err := json.Unmarshal(b, &c); err != nil {
			return nil, err
		}
		if c.Name.Value() == "" {
			return nil, types.ErrInvalidName
		}
		return &c, nil
	},
}

var noteMeta = entityMeta[*types.Note]{
	table:   types.NotesTable,
	file:    "notes.jsonl",
	key:     (*types.Note).Key,
	id:      func(n *types.Note) *string { return &n.NoteID },
	created: func(n *types.Note) *time.Time { return &n.CreatedAt },
	decode: func(b []byte) (*types.Note, error) {
		var n types.Note
		if err := json.Unmarshal(b, &n); err != nil {
			return nil, err
		}
		if n.Name.Value() == "" {
			return nil, types.ErrInvalidName
		}
		return &n, nil
	},
}
