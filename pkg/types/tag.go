package types

import (
	"fmt"
	"regexp"
	"strings"
)

// TagColor is a named palette entry.
type TagColor struct {
	Name string
	Code string
}

// TagPalette lists the colors offered for tags, in assignment order.
var TagPalette = []TagColor{
	{"Coral Red", "#F44336"},
	{"Cerise", "#E91E63"},
	{"Royal Purple", "#9C27B0"},
	{"Indigo", "#3F51B5"},
	{"Sky Blue", "#03A9F4"},
	{"Teal", "#009688"},
	{"Emerald", "#4CAF50"},
	{"Amber", "#FF9800"},
	{"Mocha", "#795548"},
	{"Slate", "#607D8B"},
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Tag labels a note. Color is optional.
type Tag struct {
	value string
	color string
}

// NewTag trims name and color. An empty color leaves the tag uncolored.
func NewTag(name, color string) (Tag, error) {
	v := strings.TrimSpace(name)
	if v == "" {
		return Tag{}, ErrInvalidTag
	}
	c := strings.TrimSpace(color)
	if c != "" && !colorPattern.MatchString(c) {
		return Tag{}, fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	return Tag{value: v, color: strings.ToUpper(c)}, nil
}

// AutoColor picks a palette color from the rune sum of name, so a tag keeps
// its color across notes.
func AutoColor(name string) string {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return TagPalette[sum%len(TagPalette)].Code
}

func (t Tag) Value() string { return t.value }

func (t Tag) Color() string { return t.color }

// WithColor returns a copy of t with color c, or the automatic color when c is
// empty.
func (t Tag) WithColor(c string) (Tag, error) {
	if strings.TrimSpace(c) == "" {
		c = AutoColor(t.value)
	}
	return NewTag(t.value, c)
}

// Is reports whether t has the given name, ignoring case.
func (t Tag) Is(name string) bool {
	return strings.EqualFold(t.value, strings.TrimSpace(name))
}

func (t Tag) String() string {
	if t.color == "" {
		return t.value
	}
	return t.value + " (" + t.color + ")"
}

func (t Tag) Text() (string, bool) { return t.String(), t.value != "" }

// ParseTag reads "name" or "name:color".
func ParseTag(s string) (Tag, error) {
	name, color, _ := strings.Cut(s, ":")
	return NewTag(name, color)
}
