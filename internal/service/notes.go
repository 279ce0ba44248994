package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/assistant/pkg/search"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// NoteService manages notes keyed by name.
type NoteService struct {
	table types.Table[*types.Note]
	opts  options
}

// NewNoteService returns a service over table.
func NewNoteService(table types.Table[*types.Note], opts ...Option) *NoteService {
	return &NoteService{table: table, opts: newOptions("notes", opts)}
}

// PrepareTags parses raw tags of the form "name" or "name:color". Tags
// without a color get the palette color of their name. Duplicates, compared
// without case, keep the first occurrence.
func PrepareTags(raw []string) ([]types.Tag, error) {
	var out []types.Tag
	for _, r := range raw {
		tag, err := types.ParseTag(r)
		if err != nil {
			return nil, err
		}
		if tag.Color() == "" {
			if tag, err = tag.WithColor(""); err != nil {
				return nil, err
			}
		}
		if slices.ContainsFunc(out, func(t types.Tag) bool { return t.Is(tag.Value()) }) {
			continue
		}
		out = append(out, tag)
	}
	return out, nil
}

// Add creates and stores a note. Returns ErrAlreadyExists when the name is
// taken.
func (s *NoteService) Add(name, title, content string, tags []string) (*types.Note, error) {
	prepared, err := PrepareTags(tags)
	if err != nil {
		return nil, err
	}
	n, err := types.NewNote(name, title, content, prepared...)
	if err != nil {
		return nil, err
	}
	exists, err := s.table.Has(n.Key())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("note %q: %w", n.Key(), types.ErrAlreadyExists)
	}
	n.CreatedAt = s.opts.now().UTC()
	if err := s.table.Set(n.Key(), n); err != nil {
		return nil, err
	}
	s.opts.logger.Debug("note added", "name", n.Key(), "id", n.NoteID, "tags", len(n.Tags))
	return n, nil
}

// Update replaces the note stored under name with n. When n carries a
// different name the note is renamed.
func (s *NoteService) Update(name string, n *types.Note) (*types.Note, error) {
	name = strings.TrimSpace(name)
	if n == nil {
		return nil, fmt.Errorf("%w: note is nil", types.ErrValidation)
	}
	if err := s.mustExist(name); err != nil {
		return nil, err
	}
	if n.Key() != name {
		if err := s.table.Rename(name, n); err != nil {
			return nil, err
		}
	} else if err := s.table.Set(name, n); err != nil {
		return nil, err
	}
	s.opts.logger.Debug("note updated", "name", n.Key())
	return n, nil
}

// Edit applies edit to a builder over the stored note and saves the result.
func (s *NoteService) Edit(name string, edit func(*types.NoteBuilder) *types.NoteBuilder) (*types.Note, error) {
	n, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	updated, err := edit(n.Update().WithClock(s.opts.now)).Build()
	if err != nil {
		return nil, err
	}
	return s.Update(name, updated)
}

// Get returns the note stored under name.
func (s *NoteService) Get(name string) (*types.Note, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return s.table.Get(strings.TrimSpace(name))
}

// All returns every note in insertion order.
func (s *NoteService) All() ([]*types.Note, error) {
	return s.table.All()
}

// Rename moves a note to a new name, keeping its title, content and tags.
func (s *NoteService) Rename(name, newName string) (*types.Note, error) {
	return s.Edit(name, func(b *types.NoteBuilder) *types.NoteBuilder {
		return b.SetName(newName)
	})
}

// Delete removes the note stored under name.
func (s *NoteService) Delete(name string) error {
	if err := s.mustExist(name); err != nil {
		return err
	}
	if err := s.table.Delete(strings.TrimSpace(name)); err != nil {
		return err
	}
	s.opts.logger.Debug("note deleted", "name", name)
	return nil
}

// Has reports whether a note is stored under name.
func (s *NoteService) Has(name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	return s.table.Has(strings.TrimSpace(name))
}

// Search returns the notes whose text contains every token of query, in
// insertion order.
func (s *NoteService) Search(query string) ([]*types.Note, error) {
	m, err := search.NewMatcher(query)
	if err != nil {
		return nil, err
	}
	found, err := s.table.Filter(func(n *types.Note) bool { return m.Match(n) })
	if err != nil {
		return nil, err
	}
	s.opts.logger.Debug("note search", "tokens", m.Tokens(), "matches", len(found))
	return found, nil
}

// AddTags adds raw tags to a note. A tag already on the note takes the new
// color.
func (s *NoteService) AddTags(name string, raw []string) (*types.Note, error) {
	tags, err := PrepareTags(raw)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: tags list cannot be empty", types.ErrInvalidTag)
	}
	return s.Edit(name, func(b *types.NoteBuilder) *types.NoteBuilder {
		for _, t := range tags {
			b.AddTag(t)
		}
		return b
	})
}

// RemoveTag removes a tag from a note. Returns ErrNotFound when the note does
// not carry it.
func (s *NoteService) RemoveTag(name, tag string) (*types.Note, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, types.ErrInvalidTag
	}
	return s.Edit(name, func(b *types.NoteBuilder) *types.NoteBuilder {
		return b.RemoveTag(tag)
	})
}

// ByTag returns the notes carrying tag, in insertion order.
func (s *NoteService) ByTag(tag string) ([]*types.Note, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, types.ErrInvalidTag
	}
	return s.table.Filter(func(n *types.Note) bool { return n.HasTag(tag) })
}

// SortedByTags returns the notes ordered by their sorted tag names and then
// by title, ignoring case. Untagged notes come last. A non-empty tag limits
// the result to notes carrying it.
func (s *NoteService) SortedByTags(tag string) ([]*types.Note, error) {
	var notes []*types.Note
	var err error
	if strings.TrimSpace(tag) != "" {
		notes, err = s.ByTag(tag)
	} else {
		notes, err = s.All()
	}
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(notes, compareByTags)
	return notes, nil
}

func compareByTags(a, b *types.Note) int {
	ka, oka := a.TagsSortKey()
	kb, okb := b.TagsSortKey()
	switch {
	case oka && !okb:
		return -1
	case !oka && okb:
		return 1
	}
	if c := cmp.Compare(ka, kb); c != 0 {
		return c
	}
	return cmp.Compare(strings.ToLower(a.Title.Value()), strings.ToLower(b.Title.Value()))
}

// DistinctTags returns one tag per name across all notes, keeping the first
// seen spelling and color, sorted by name without case.
func (s *NoteService) DistinctTags() ([]types.Tag, error) {
	notes, err := s.All()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []types.Tag
	for _, n := range notes {
		for _, t := range n.Tags {
			key := strings.ToLower(t.Value())
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b types.Tag) int {
		return cmp.Compare(strings.ToLower(a.Value()), strings.ToLower(b.Value()))
	})
	return out, nil
}

func (s *NoteService) mustExist(name string) error {
	exists, err := s.Has(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("note %q: %w", strings.TrimSpace(name), types.ErrNotFound)
	}
	return nil
}
