package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assistant/internal/render"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// stdinMarker as a --content value reads the content from standard input.
const stdinMarker = "-"

func (a *app) newNoteCmd() *cobra.Command {
	cmd := group("note", "Manage notes")
	cmd.AddCommand(
		a.newNoteAddCmd(),
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Remove a note",
			Args:  exactArgs(1),
			ValidArgsFunction: a.complete(firstArg(noteNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				if err := a.notes.Delete(args[0]); err != nil {
					return err
				}
				return a.done(fmt.Sprintf("Deleted note %s", args[0]), nil, nil)
			}),
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Show one note",
			Args:  exactArgs(1),
			ValidArgsFunction: a.complete(firstArg(noteNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				n, err := a.notes.Get(args[0])
				if err != nil {
					return err
				}
				return a.emit(n, func(w io.Writer) error { return render.Note(w, n) })
			}),
		},
		a.newNoteListCmd(),
		&cobra.Command{
			Use:   "search <text...>",
			Short: "Find notes whose name, title, content or tags contain every word of text",
			Args:  minArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				found, err := a.notes.Search(joinArgs(args))
				if err != nil {
					return err
				}
				return a.emitNotes(found)
			}),
		},
		&cobra.Command{
			Use:   "rename <name> <new-name>",
			Short: "Rename a note",
			Args:  exactArgs(2),
			ValidArgsFunction: a.complete(firstArg(noteNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				n, err := a.notes.Rename(args[0], args[1])
				if err != nil {
					return err
				}
				return a.noteDone("Note renamed", n)
			}),
		},
		&cobra.Command{
			Use:   "edit-title <name> <title...>",
			Short: "Change the title of a note",
			Args:  minArgs(2),
			ValidArgsFunction: a.complete(firstArg(noteNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				n, err := a.notes.Edit(args[0], func(b *types.NoteBuilder) *types.NoteBuilder {
					return b.SetTitle(joinArgs(args[1:]))
				})
				if err != nil {
					return err
				}
				return a.noteDone("Title updated", n)
			}),
		},
		&cobra.Command{
			Use:   "edit-content <name> <content...>",
			Short: "Replace the content of a note; use - to read it from stdin",
			Args:  minArgs(2),
			ValidArgsFunction: a.complete(firstArg(noteNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				content, err := a.readContent(cmd, joinArgs(args[1:]))
				if err != nil {
					return err
				}
				n, err := a.notes.Edit(args[0], func(b *types.NoteBuilder) *types.NoteBuilder {
					return b.SetContent(content)
				})
				if err != nil {
					return err
				}
				return a.noteDone("Content updated", n)
			}),
		},
		a.newNoteTagsCmd(),
		a.newNoteTagCmd(),
	)
	return cmd
}

func (a *app) newNoteAddCmd() *cobra.Command {
	var (
		title   string
		content string
		tags    []string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a note",
		Long: `Add creates a note with a title, content of at least 10 characters
and optional tags. Tags are written as name or name:#RRGGBB; tags without
a color get one from the palette.`,
		Example: `  assistant note add groceries --title "Shopping" --content "milk, bread, eggs" --tag home
  assistant note add plan --title "Q3 plan" --content - --tag work:#3F51B5 < plan.txt`,
		Args: exactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			body, err := a.readContent(cmd, content)
			if err != nil {
				return err
			}
			n, err := a.notes.Add(args[0], title, body, tags)
			if err != nil {
				return err
			}
			return a.noteDone("Note added", n)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "note title (required)")
	cmd.Flags().StringVar(&content, "content", "", "note content, or - to read from stdin (required)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag as name or name:#RRGGBB (repeatable)")
	return cmd
}

func (a *app) newNoteListCmd() *cobra.Command {
	var (
		tag    string
		byTags bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes in insertion order, or sorted by tags",
		Args:  noArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var (
				notes []*types.Note
				err   error
			)
			switch {
			case byTags:
				notes, err = a.notes.SortedByTags(tag)
			case tag != "":
				notes, err = a.notes.ByTag(tag)
			default:
				notes, err = a.notes.All()
			}
			if err != nil {
				return err
			}
			return a.emitNotes(notes)
		}),
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only notes carrying this tag")
	cmd.RegisterFlagCompletionFunc("tag", a.complete(tagNames))
	cmd.Flags().BoolVar(&byTags, "by-tags", false, "sort by tag names, then title; untagged notes last")
	return cmd
}

func (a *app) newNoteTagsCmd() *cobra.Command {
	var palette bool
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the distinct tags used by notes",
		Args:  noArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if palette {
				return a.emit(types.TagPalette, render.Palette)
			}
			tags, err := a.notes.DistinctTags()
			if err != nil {
				return err
			}
			return a.emit(tags, func(w io.Writer) error { return render.Tags(w, tags) })
		}),
	}
	cmd.Flags().BoolVar(&palette, "palette", false, "list the colors offered for tags instead")
	return cmd
}

func (a *app) newNoteTagCmd() *cobra.Command {
	cmd := group("tag", "Add or remove note tags")
	cmd.AddCommand(
		&cobra.Command{
			Use:     "add <name> <tag[:color]>...",
			Short:   "Add tags to a note; an existing tag takes the new color",
			Example: `  assistant note tag add plan work urgent:#F44336`,
			Args:    minArgs(2),
			ValidArgsFunction: a.complete(knownTags),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				n, err := a.notes.AddTags(args[0], args[1:])
				if err != nil {
					return err
				}
				return a.noteDone("Tags added", n)
			}),
		},
		&cobra.Command{
			Use:   "remove <name> <tag>",
			Short: "Remove a tag from a note",
			Args:  exactArgs(2),
			ValidArgsFunction: a.complete(noteTags),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				n, err := a.notes.RemoveTag(args[0], args[1])
				if err != nil {
					return err
				}
				return a.noteDone("Tag removed", n)
			}),
		},
	)
	return cmd
}

func (a *app) emitNotes(notes []*types.Note) error {
	return a.emit(notes, func(w io.Writer) error { return render.Notes(w, notes) })
}

// readContent returns value, or all of stdin when value is the stdin marker.
func (a *app) readContent(cmd *cobra.Command, value string) (string, error) {
	if value != stdinMarker {
		return value, nil
	}
	if a.inShell {
		return "", usageError(cmd, "content cannot be read from stdin inside the shell")
	}
	data, err := io.ReadAll(a.in)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
