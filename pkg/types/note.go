package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Note is a titled text entry keyed by its name.
type Note struct {
	NoteID    string     `json:"note_id"` // UUID v7, assigned by the backend on create.
	Name      Name       `json:"name"`
	Title     Title      `json:"title"`
	Content   Content    `json:"content"`
	Tags      []Tag      `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewNote validates name, title and content.
func NewNote(name, title, content string, tags ...Tag) (*Note, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	t, err := NewTitle(title)
	if err != nil {
		return nil, err
	}
	c, err := NewContent(content)
	if err != nil {
		return nil, err
	}
	note := &Note{Name: n, Title: t, Content: c}
	for _, tag := range tags {
		note.AddTag(tag)
	}
	return note, nil
}

// Key returns the storage key of the note.
func (n *Note) Key() string { return n.Name.Value() }

// CollectText implements search.Searchable.
func (n *Note) CollectText(walk func(any)) {
	walk(n.Name)
	walk(n.Title)
	walk(n.Content)
	walk(n.Tags)
	walk(n.CreatedAt)
	if n.UpdatedAt != nil {
		walk(*n.UpdatedAt)
	}
}

// HasTag reports whether the note carries a tag named name, ignoring case.
func (n *Note) HasTag(name string) bool {
	return slices.ContainsFunc(n.Tags, func(t Tag) bool { return t.Is(name) })
}

// AddTag appends tag, or replaces the tag with the same name.
func (n *Note) AddTag(tag Tag) {
	for i, t := range n.Tags {
		if t.Is(tag.Value()) {
			n.Tags[i] = tag
			return
		}
	}
	n.Tags = append(n.Tags, tag)
}

// RemoveTag drops the tag named name and reports whether it was present.
func (n *Note) RemoveTag(name string) bool {
	before := len(n.Tags)
	n.Tags = slices.DeleteFunc(n.Tags, func(t Tag) bool { return t.Is(name) })
	return len(n.Tags) != before
}

// TagsSortKey orders notes by their lowercased, sorted tag names. Untagged
// notes report ok == false and sort after tagged ones.
func (n *Note) TagsSortKey() (key string, ok bool) {
	if len(n.Tags) == 0 {
		return "", false
	}
	names := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		names[i] = strings.ToLower(t.Value())
	}
	slices.Sort(names)
	return strings.Join(names, "\x00"), true
}

// Clone returns a deep copy of n.
func (n *Note) Clone() *Note {
	cp := *n
	cp.Tags = slices.Clone(n.Tags)
	if n.UpdatedAt != nil {
		u := *n.UpdatedAt
		cp.UpdatedAt = &u
	}
	return &cp
}

func (n *Note) String() string {
	return fmt.Sprintf("%s\n%s", n.Title, n.Content)
}

// MarshalJSON renders a tag as {"name": ..., "color": ...}.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"name"`
		Color string `json:"color,omitempty"`
	}{t.value, t.color})
}

// Update starts a builder over a copy of n.
func (n *Note) Update() *NoteBuilder {
	return &NoteBuilder{note: n.Clone(), now: time.Now}
}

// NoteBuilder applies a chain of edits to a note. The first failing edit is
// returned by Build.
type NoteBuilder struct {
	note *Note
	now  func() time.Time
	err  error
}

// WithClock sets the clock used to stamp UpdatedAt.
func (b *NoteBuilder) WithClock(now func() time.Time) *NoteBuilder {
	b.now = now
	return b
}

func (b *NoteBuilder) fail(err error) *NoteBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *NoteBuilder) SetName(name string) *NoteBuilder {
	if b.err != nil {
		return b
	}
	v, err := NewName(name)
	if err != nil {
		return b.fail(err)
	}
	b.note.Name = v
	return b
}

func (b *NoteBuilder) SetTitle(title string) *NoteBuilder {
	if b.err != nil {
		return b
	}
	v, err := NewTitle(title)
	if err != nil {
		return b.fail(err)
	}
	b.note.Title = v
	return b
}

func (b *NoteBuilder) SetContent(content string) *NoteBuilder {
	if b.err != nil {
		return b
	}
	v, err := NewContent(content)
	if err != nil {
		return b.fail(err)
	}
	b.note.Content = v
	return b
}

func (b *NoteBuilder) AddTag(tag Tag) *NoteBuilder {
	if b.err == nil {
		b.note.AddTag(tag)
	}
	return b
}

// RemoveTag fails with ErrNotFound when the note has no such tag.
func (b *NoteBuilder) RemoveTag(name string) *NoteBuilder {
	if b.err != nil {
		return b
	}
	if !b.note.RemoveTag(name) {
		return b.fail(fmt.Errorf("tag %q not found in note %s: %w", name, b.note.Name, ErrNotFound))
	}
	return b
}

// Build returns the edited copy with UpdatedAt set.
func (b *NoteBuilder) Build() (*Note, error) {
	if b.err != nil {
		return nil, b.err
	}
	now := b.now().UTC()
	b.note.UpdatedAt = &now
	return b.note, nil
}
