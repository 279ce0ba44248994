package cli

import (
	"fmt"
	"io"

	"github.com/mesh-intelligence/assistant/internal/render"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// emit writes v as JSON in --json mode and through text otherwise.
func (a *app) emit(v any, text func(io.Writer) error) error {
	if a.flags.jsonMode {
		return render.JSON(a.out, v)
	}
	return text(a.out)
}

// done prints a confirmation, followed by the affected contact or note in
// text mode. In --json mode only the entity is printed.
func (a *app) done(msg string, v any, details func(io.Writer) error) error {
	if a.flags.jsonMode {
		if v == nil {
			return render.JSON(a.out, map[string]string{"status": msg})
		}
		return render.JSON(a.out, v)
	}
	fmt.Fprintln(a.out, render.DefaultStyles.Title.Render(msg))
	if details == nil {
		return nil
	}
	return details(a.out)
}

func (a *app) contactDone(msg string, c *types.Contact) error {
	return a.done(msg, c, func(w io.Writer) error { return render.Contact(w, c) })
}

func (a *app) noteDone(msg string, n *types.Note) error {
	return a.done(msg, n, func(w io.Writer) error { return render.Note(w, n) })
}
