package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assistant/internal/snapshot"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

func (a *app) newSnapshotCmd() *cobra.Command {
	cmd := group("snapshot", "Save and restore named copies of contacts or notes")
	cmd.Long = `Snapshots are JSON files holding a whole table. Saving stamps the name
with the current time; saving unchanged data again returns the previous
snapshot instead of writing a new file.

Tables: contacts, notes.`
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save <table> [name]",
			Short: "Save a table under name (default: autosave)",
			Args:  rangeArgs(1, 2),
			ValidArgsFunction: a.complete(firstArg(tableNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				name := snapshot.DefaultName
				if len(args) == 2 {
					name = args[1]
				}
				return a.onTable(cmd, args[0],
					func(s *snapshot.Store[*types.Contact]) error { return saveSnapshot(a, s, a.contactTable, name) },
					func(s *snapshot.Store[*types.Note]) error { return saveSnapshot(a, s, a.noteTable, name) })
			}),
		},
		&cobra.Command{
			Use:   "load <table> [name]",
			Short: "Replace a table with a snapshot (default: the latest)",
			Args:  rangeArgs(1, 2),
			ValidArgsFunction: a.complete(snapshotNames),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) == 2 {
					name = args[1]
				}
				return a.onTable(cmd, args[0],
					func(s *snapshot.Store[*types.Contact]) error { return loadSnapshot(a, s, a.contactTable, name) },
					func(s *snapshot.Store[*types.Note]) error { return loadSnapshot(a, s, a.noteTable, name) })
			}),
		},
		&cobra.Command{
			Use:   "list <table> [pattern]",
			Short: "List snapshots, optionally matching a glob pattern",
			Args:  rangeArgs(1, 2),
			ValidArgsFunction: a.complete(firstArg(tableNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				pattern := ""
				if len(args) == 2 {
					pattern = args[1]
				}
				return a.onTable(cmd, args[0],
					func(s *snapshot.Store[*types.Contact]) error { return listSnapshots(a, s, pattern) },
					func(s *snapshot.Store[*types.Note]) error { return listSnapshots(a, s, pattern) })
			}),
		},
		&cobra.Command{
			Use:   "delete <table> <name>",
			Short: "Delete a snapshot",
			Args:  exactArgs(2),
			ValidArgsFunction: a.complete(snapshotNames),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.onTable(cmd, args[0],
					func(s *snapshot.Store[*types.Contact]) error { return deleteSnapshot(a, s, args[1]) },
					func(s *snapshot.Store[*types.Note]) error { return deleteSnapshot(a, s, args[1]) })
			}),
		},
	)
	return cmd
}

// onTable dispatches to the snapshot store of the named table.
func (a *app) onTable(cmd *cobra.Command, table string,
	contacts func(*snapshot.Store[*types.Contact]) error,
	notes func(*snapshot.Store[*types.Note]) error,
) error {
	switch strings.ToLower(strings.TrimSpace(table)) {
	case types.ContactsTable:
		if a.contactSnapshots == nil {
			s, err := snapshot.New[*types.Contact](a.config.ContactsDir, a.snapshotOptions()...)
			if err != nil {
				return err
			}
			a.contactSnapshots = s
		}
		return contacts(a.contactSnapshots)
	case types.NotesTable:
		if a.noteSnapshots == nil {
			s, err := snapshot.New[*types.Note](a.config.NotesDir, a.snapshotOptions()...)
			if err != nil {
				return err
			}
			a.noteSnapshots = s
		}
		return notes(a.noteSnapshots)
	default:
		return usageError(cmd, "unknown table %q (valid: %s)", table, strings.Join(types.StandardTableNames, ", "))
	}
}

func (a *app) snapshotOptions() []snapshot.Option {
	return []snapshot.Option{snapshot.WithLogger(a.logger), snapshot.WithClock(a.now)}
}

func saveSnapshot[T any](a *app, s *snapshot.Store[T], table types.Table[T], name string) error {
	items, err := table.All()
	if err != nil {
		return err
	}
	saved, err := s.Save(name, items)
	if err != nil {
		return err
	}
	return a.done(fmt.Sprintf("Saved %d item(s) to %s", len(items), saved),
		map[string]any{"name": saved, "items": len(items)}, nil)
}

func loadSnapshot[T any](a *app, s *snapshot.Store[T], table types.Table[T], name string) error {
	if name == "" {
		latest, err := s.Latest()
		if err != nil {
			return err
		}
		name = latest
	}
	items, err := s.Load(name)
	if err != nil {
		return err
	}
	if err := table.Replace(items); err != nil {
		return err
	}
	return a.done(fmt.Sprintf("Loaded %d item(s) from %s", len(items), name),
		map[string]any{"name": name, "items": len(items)}, nil)
}

func listSnapshots[T any](a *app, s *snapshot.Store[T], pattern string) error {
	names, err := s.List(pattern)
	if err != nil {
		return err
	}
	return a.emit(names, func(w io.Writer) error {
		if len(names) == 0 {
			_, err := fmt.Fprintln(w, "No snapshots found.")
			return err
		}
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
		_, err := fmt.Fprintf(w, "Total: %d snapshot(s) in %s\n", len(names), s.Dir())
		return err
	})
}

func deleteSnapshot[T any](a *app, s *snapshot.Store[T], name string) error {
	if err := s.Delete(name); err != nil {
		return err
	}
	return a.done(fmt.Sprintf("Deleted snapshot %s", name), nil, nil)
}
