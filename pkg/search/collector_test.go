package search

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

type node struct {
	Label    string
	Children []*node
	Next     *node
	hidden   string
}

type wrapper struct{ v string }

func (w wrapper) Value() string { return w.v }

type blob struct{}

func (blob) Value() []byte { return []byte("raw") }

type stringerStruct struct{ N int }

func (s stringerStruct) String() string { return "stringer-form" }

type pointerStringer struct{ X string }

func (p *pointerStringer) String() string { return "S:" + p.X }

type panicky struct{}

func (panicky) Text() (string, bool) { panic("boom") }

type optional struct {
	s  string
	ok bool
}

func (o optional) Text() (string, bool) { return o.s, o.ok }

type declared struct {
	A string
	B string
}

func (d *declared) CollectText(walk func(any)) { walk(d.A) }

func TestCollect_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"string", "hello", []string{"hello"}},
		{"int", 42, []string{"42"}},
		{"negative int64", int64(-7), []string{"-7"}},
		{"uint", uint8(9), []string{"9"}},
		{"float", 2.5, []string{"2.5"}},
		{"bool", true, []string{"true"}},
		{"month", time.November, []string{"November"}},
		{"midnight time", time.Date(2000, 11, 5, 0, 0, 0, 0, time.UTC), []string{"2000-11-05"}},
		{"timestamp", time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC), []string{"2024-03-01 09:30:15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Collect(tt.in))
		})
	}
}

func TestCollect_NilInputs(t *testing.T) {
	var p *node
	var m map[string]string
	var s []string
	var tx Texter

	assert.NotPanics(t, func() {
		assert.Empty(t, Collect(nil))
		assert.Empty(t, Collect(p))
		assert.Empty(t, Collect(m))
		assert.Empty(t, Collect(s))
		assert.Empty(t, Collect(tx))
	})
}

func TestCollect_Containers(t *testing.T) {
	got := Collect([]any{"a", []int{1, 2}, [2]string{"x", "y"}})
	assert.Equal(t, []string{"a", "1", "2", "x", "y"}, got)
}

func TestCollect_MapKeysSorted(t *testing.T) {
	got := Collect(map[string]int{"b": 2, "a": 1, "c": 3})
	assert.Equal(t, []string{"a", "1", "b", "2", "c", "3"}, got)
}

func TestCollect_ExportedFieldsOnly(t *testing.T) {
	got := Collect(node{Label: "root", hidden: "secret"})
	assert.Equal(t, []string{"root"}, got)
}

func TestCollect_CycleTerminates(t *testing.T) {
	a := &node{Label: "a"}
	b := &node{Label: "b", Next: a}
	a.Next = b
	a.Children = []*node{a, b}

	got := Collect(a)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestCollect_DistinctPointersToEqualValuesBothContribute(t *testing.T) {
	x := &node{Label: "same"}
	y := &node{Label: "same"}
	got := Collect([]*node{x, y, x})
	assert.Equal(t, []string{"same", "same"}, got)
}

func TestCollect_ValueCopiesAlwaysContribute(t *testing.T) {
	v := node{Label: "copy"}
	got := Collect([]node{v, v})
	assert.Equal(t, []string{"copy", "copy"}, got)
}

func TestCollect_DeeplyNested(t *testing.T) {
	var root any = "leaf"
	for range 500 {
		root = []any{root}
	}
	assert.NotPanics(t, func() {
		assert.Equal(t, []string{"leaf"}, Collect(root))
	})
}

func TestCollect_PanickingNodeSkipped(t *testing.T) {
	c := NewCollector()
	assert.NotPanics(t, func() {
		c.Visit([]any{"before", panicky{}, "after"})
	})
	assert.Equal(t, []string{"before", "after"}, c.Strings())
	assert.Equal(t, 1, c.Skipped())
}

func TestCollect_Texter(t *testing.T) {
	got := Collect([]any{optional{"shown", true}, optional{"hidden", false}})
	assert.Equal(t, []string{"shown"}, got)
}

func TestCollect_SearchableDeclaresChildren(t *testing.T) {
	got := Collect(&declared{A: "kept", B: "ignored"})
	assert.Equal(t, []string{"kept"}, got)
}

func TestCollect_ValueAccessor(t *testing.T) {
	assert.Equal(t, []string{"wrapped"}, Collect(wrapper{"wrapped"}))
	assert.Empty(t, Collect(blob{}))
}

func TestCollect_StructStringerAfterFields(t *testing.T) {
	got := Collect(stringerStruct{N: 3})
	assert.Equal(t, []string{"3", "stringer-form"}, got)
}

func TestCollect_PointerReceiverStringer(t *testing.T) {
	assert.Equal(t, []string{"x", "S:x"}, Collect(&pointerStringer{X: "x"}))
	assert.Equal(t, []string{"3", "stringer-form"}, Collect(&stringerStruct{N: 3}))
}

func TestCollect_ValueAccessorThroughPointerContributesOnce(t *testing.T) {
	assert.Equal(t, []string{"wrapped"}, Collect(&wrapper{"wrapped"}))
}

func TestCollect_Contact(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c, err := types.NewContact("John Doe", "+380991112233")
	require.NoError(t, err)
	c, err = c.Update().
		WithClock(func() time.Time { return today }).
		AddEmail("john@example.com").
		SetBirthday("05.11.2000").
		SetAddress("Kyiv, Main St. 1").
		Build()
	require.NoError(t, err)

	got := Collect(c)
	assert.Equal(t, []string{
		"John Doe",
		"+380991112233",
		"john@example.com",
		"05.11.2000",
		"Kyiv, Main St. 1",
	}, got)
}

func TestCollect_Note(t *testing.T) {
	tag, err := types.NewTag("work", "#FF0000")
	require.NoError(t, err)
	n, err := types.NewNote("todo", "Groceries", "milk, bread and eggs", tag)
	require.NoError(t, err)
	n.CreatedAt = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	got := Collect(n)
	assert.Equal(t, []string{
		"todo",
		"Groceries",
		"milk, bread and eggs",
		"work (#FF0000)",
		"2024-01-02 10:00:00",
	}, got)
}

func TestCollect_NoteUpdatedAt(t *testing.T) {
	n, err := types.NewNote("todo", "Groceries", "milk, bread and eggs")
	require.NoError(t, err)
	n, err = n.Update().
		WithClock(func() time.Time { return time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC) }).
		SetTitle("Shopping").
		Build()
	require.NoError(t, err)

	got := Collect(n)
	assert.Equal(t, "2024-03-04 08:30:00", got[len(got)-1])
}

func TestErrEmptyQuery_IsValidation(t *testing.T) {
	assert.True(t, errors.Is(ErrEmptyQuery, types.ErrValidation))
}
