package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/assistant/pkg/recurrence"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// maxCell is the widest a free-text table cell may be before truncation.
const maxCell = 40

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// table buffers rows through a tabwriter and writes them with trailing
// spaces trimmed.
type table struct {
	sb strings.Builder
	tw *tabwriter.Writer
}

func newTable(headers ...string) *table {
	t := &table{}
	t.tw = tabwriter.NewWriter(&t.sb, 0, 0, 2, ' ', 0)
	t.row(headers...)
	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("-", len(h))
	}
	t.row(rules...)
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) writeTo(w io.Writer) error {
	if err := t.tw.Flush(); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(t.sb.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > maxCell {
		return string(r[:maxCell-3]) + "..."
	}
	return s
}

func joinText[T fmt.Stringer](values []T) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func total(w io.Writer, n int, noun string) error {
	_, err := fmt.Fprintln(w, DefaultStyles.Muted.Render(fmt.Sprintf("Total: %d %s(s)", n, noun)))
	return err
}

// Contacts prints contacts as a table.
func Contacts(w io.Writer, contacts []*types.Contact) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(w, "No contacts found.")
		return err
	}
	t := newTable("NAME", "PHONES", "EMAILS", "BIRTHDAY", "ADDRESS")
	for _, c := range contacts {
		birthday, address := "-", "-"
		if c.Birthday != nil {
			birthday = c.Birthday.String()
		}
		if c.Address != nil {
			address = truncate(c.Address.Value())
		}
		t.row(truncate(c.Name.Value()), joinText(c.Phones), joinText(c.Emails), birthday, address)
	}
	if err := t.writeTo(w); err != nil {
		return err
	}
	return total(w, len(contacts), "contact")
}

// Contact prints one contact with every field.
func Contact(w io.Writer, c *types.Contact) error {
	s := DefaultStyles
	fmt.Fprintln(w, s.Title.Render(c.Name.Value()))
	fields := []struct{ label, value string }{
		{"Phones", joinText(c.Phones)},
		{"Emails", joinText(c.Emails)},
		{"Birthday", "-"},
		{"Address", "-"},
		{"ID", c.ContactID},
	}
	if c.Birthday != nil {
		fields[2].value = c.Birthday.String()
	}
	if c.Address != nil {
		fields[3].value = c.Address.Value()
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s %s\n", s.Label.Render(fmt.Sprintf("%-9s", f.label+":")), f.value); err != nil {
			return err
		}
	}
	return nil
}

// Upcoming prints contacts with their next birthday and the days left.
func Upcoming(w io.Writer, contacts []*types.Contact, today time.Time) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(w, "No upcoming birthdays.")
		return err
	}
	t := newTable("NAME", "BIRTHDAY", "NEXT", "IN DAYS")
	for _, c := range contacts {
		a := recurrence.FromBirthday(c.Birthday)
		if a == nil {
			continue
		}
		next := recurrence.NextOccurrence(*a, today)
		t.row(truncate(c.Name.Value()), c.Birthday.String(),
			next.Format("Mon 02.01.2006"), fmt.Sprint(recurrence.DaysUntil(*a, today)))
	}
	if err := t.writeTo(w); err != nil {
		return err
	}
	return total(w, len(contacts), "contact")
}

// Notes prints notes as a table.
func Notes(w io.Writer, notes []*types.Note) error {
	if len(notes) == 0 {
		_, err := fmt.Fprintln(w, "No notes found.")
		return err
	}
	t := newTable("NAME", "TITLE", "TAGS", "CREATED", "UPDATED")
	for _, n := range notes {
		names := make([]string, len(n.Tags))
		for i, tag := range n.Tags {
			names[i] = tag.Value()
		}
		tags := "-"
		if len(names) > 0 {
			tags = strings.Join(names, ", ")
		}
		updated := "-"
		if n.UpdatedAt != nil {
			updated = n.UpdatedAt.Format("2006-01-02 15:04")
		}
		t.row(truncate(n.Name.Value()), truncate(n.Title.Value()), tags,
			n.CreatedAt.Format("2006-01-02 15:04"), updated)
	}
	if err := t.writeTo(w); err != nil {
		return err
	}
	return total(w, len(notes), "note")
}

// Note prints one note with its content.
func Note(w io.Writer, n *types.Note) error {
	s := DefaultStyles
	fmt.Fprintf(w, "%s %s\n", s.Title.Render(n.Title.Value()), s.Muted.Render("("+n.Name.Value()+")"))
	if len(n.Tags) > 0 {
		parts := make([]string, len(n.Tags))
		for i, t := range n.Tags {
			parts[i] = TagStyle(t.Color()).Render("#" + t.Value())
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, n.Content.Value())
	fmt.Fprintln(w)
	meta := "created " + n.CreatedAt.Format("2006-01-02 15:04")
	if n.UpdatedAt != nil {
		meta += ", updated " + n.UpdatedAt.Format("2006-01-02 15:04")
	}
	_, err := fmt.Fprintln(w, s.Muted.Render(meta))
	return err
}

// Tags prints tags with a colored swatch.
func Tags(w io.Writer, tags []types.Tag) error {
	if len(tags) == 0 {
		_, err := fmt.Fprintln(w, "No tags found.")
		return err
	}
	for _, t := range tags {
		color := t.Color()
		if color == "" {
			color = "-"
		}
		if _, err := fmt.Fprintf(w, "%s %-20s %s\n", TagStyle(t.Color()).Render("■"), t.Value(), color); err != nil {
			return err
		}
	}
	return nil
}

// Palette prints the colors offered for tags.
func Palette(w io.Writer) error {
	for _, c := range types.TagPalette {
		if _, err := fmt.Fprintf(w, "%s %-14s %s\n", TagStyle(c.Code).Render("■"), c.Name, c.Code); err != nil {
			return err
		}
	}
	return nil
}
