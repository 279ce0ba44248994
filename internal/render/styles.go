// Package render formats contacts, notes, tags and the birthday calendar for
// the terminal. Tables are laid out with text/tabwriter; headings, tag colors
// and calendar highlights use lipgloss, which drops styling when the output
// is not a terminal.
package render

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the renderers.
type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Error    lipgloss.Style
	Today    lipgloss.Style
	Birthday lipgloss.Style
	Weekend  lipgloss.Style
}

// DefaultStyles is the palette used by the package-level functions.
var DefaultStyles = Styles{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45")),
	Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Label:    lipgloss.NewStyle().Bold(true),
	Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	Today:    lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(lipgloss.Color("34")),
	Birthday: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("201")),
	Weekend:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
}

// TagStyle colors text with the tag's own color, if any.
func TagStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
