package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

func noteNames(ns []*types.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Key()
	}
	return out
}

func TestPrepareTags(t *testing.T) {
	tags, err := PrepareTags([]string{"Work:#ff0000", "work", " home ", "urgent:"})
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "Work", tags[0].Value())
	assert.Equal(t, "#FF0000", tags[0].Color(), "first occurrence wins")
	assert.Equal(t, "home", tags[1].Value())
	assert.Equal(t, types.AutoColor("home"), tags[1].Color())
	assert.Equal(t, types.AutoColor("urgent"), tags[2].Color())

	_, err = PrepareTags([]string{" "})
	assert.ErrorIs(t, err, types.ErrInvalidTag)
	_, err = PrepareTags([]string{"x:blue"})
	assert.ErrorIs(t, err, types.ErrInvalidColor)
}

func TestNoteService_Add(t *testing.T) {
	s := newNoteService(t)

	n, err := s.Add("shop", "Groceries", "milk, bread and eggs", []string{"home"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.NoteID)
	assert.Equal(t, testToday, n.CreatedAt)

	_, err = s.Add("shop", "Other", "different content", nil)
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
	_, err = s.Add("x", "Title", "short", nil)
	assert.ErrorIs(t, err, types.ErrInvalidContent)
	_, err = s.Add("x", " ", "long enough content", nil)
	assert.ErrorIs(t, err, types.ErrInvalidTitle)
}

func TestNoteService_EditAndRename(t *testing.T) {
	s := newNoteService(t)
	_, err := s.Add("a", "Alpha", "alpha content here", []string{"x"})
	require.NoError(t, err)
	_, err = s.Add("b", "Beta", "beta content here", nil)
	require.NoError(t, err)

	n, err := s.Edit("a", func(b *types.NoteBuilder) *types.NoteBuilder {
		return b.SetTitle("Alpha 2")
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", n.Title.Value())
	require.NotNil(t, n.UpdatedAt)

	renamed, err := s.Rename("a", "c")
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", renamed.Title.Value())
	assert.True(t, renamed.HasTag("x"))

	all, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, noteNames(all))

	_, err = s.Rename("b", "c")
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
	require.NoError(t, s.Delete("b"))
	assert.ErrorIs(t, s.Delete("b"), types.ErrNotFound)
}

func TestNoteService_Tags(t *testing.T) {
	s := newNoteService(t)
	_, err := s.Add("n", "Title", "some content here", nil)
	require.NoError(t, err)

	n, err := s.AddTags("n", []string{"work", "Home:#00FF00"})
	require.NoError(t, err)
	assert.Len(t, n.Tags, 2)

	n, err = s.AddTags("n", []string{"WORK:#123456"})
	require.NoError(t, err)
	require.Len(t, n.Tags, 2)
	assert.Equal(t, "#123456", n.Tags[0].Color())

	_, err = s.AddTags("n", nil)
	assert.ErrorIs(t, err, types.ErrValidation)

	n, err = s.RemoveTag("n", "home")
	require.NoError(t, err)
	assert.False(t, n.HasTag("home"))

	_, err = s.RemoveTag("n", "home")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.RemoveTag("missing", "work")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestNoteService_SortedByTagsAndDistinct(t *testing.T) {
	s := newNoteService(t)
	add := func(name, title string, tags ...string) {
		_, err := s.Add(name, title, "content long enough", tags)
		require.NoError(t, err)
	}
	add("untagged", "Anything")
	add("w2", "zeta", "work")
	add("w1", "Alpha", "Work:#FF0000")
	add("h", "home note", "home", "work")

	sorted, err := s.SortedByTags("")
	require.NoError(t, err)
	// "home\x00work" < "work"; within "work" titles compare without case.
	assert.Equal(t, []string{"h", "w1", "w2", "untagged"}, noteNames(sorted))

	onlyWork, err := s.SortedByTags("WORK")
	require.NoError(t, err)
	assert.Equal(t, []string{"h", "w1", "w2"}, noteNames(onlyWork))

	byTag, err := s.ByTag("home")
	require.NoError(t, err)
	assert.Equal(t, []string{"h"}, noteNames(byTag))

	distinct, err := s.DistinctTags()
	require.NoError(t, err)
	require.Len(t, distinct, 2)
	assert.Equal(t, "home", distinct[0].Value())
	assert.Equal(t, "work", distinct[1].Value(), "first seen spelling is kept")
	assert.Equal(t, types.AutoColor("work"), distinct[1].Color())
}

func TestNoteService_Search(t *testing.T) {
	s := newNoteService(t)
	_, err := s.Add("shop", "Groceries", "milk, bread and eggs", []string{"home"})
	require.NoError(t, err)
	_, err = s.Add("plan", "Quarter plan", "write the plan for Q3", []string{"work"})
	require.NoError(t, err)

	got, err := s.Search("MILK home")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, noteNames(got))

	got, err = s.Search("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop", "plan"}, noteNames(got), "created date is searchable")

	got, err = s.Search("nothing")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Search(" ")
	assert.ErrorIs(t, err, types.ErrValidation)
}
