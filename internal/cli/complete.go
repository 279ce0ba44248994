package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assistant/internal/snapshot"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// completer returns the candidates for the argument at position pos, given
// the arguments already typed.
type completer func(a *app, args []string, pos int) ([]string, error)

// complete adapts c to cobra's ValidArgsFunction. Completion runs before the
// target command's flags are applied, so configuration is loaded again and
// storage is opened here.
func (a *app) complete(c completer) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if err := a.configure(cmd, args); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		if err := a.open(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		candidates, err := c(a, args, len(args))
		if err != nil {
			a.logger.Debug("completion failed", "command", cmd.CommandPath(), "error", err)
			return nil, cobra.ShellCompDirectiveError
		}
		return prefixed(candidates, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// prefixed keeps the candidates starting with prefix, ignoring case.
func prefixed(candidates []string, prefix string) []string {
	out := make([]string, 0, len(candidates))
	lower := strings.ToLower(prefix)
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
		}
	}
	return out
}

// firstArg completes only the first argument.
func firstArg(c completer) completer {
	return func(a *app, args []string, pos int) ([]string, error) {
		if pos != 0 {
			return nil, nil
		}
		return c(a, args, pos)
	}
}

func contactNames(a *app, _ []string, _ int) ([]string, error) {
	all, err := a.contacts.All()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Key()
	}
	return names, nil
}

func noteNames(a *app, _ []string, _ int) ([]string, error) {
	all, err := a.notes.All()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(all))
	for i, n := range all {
		names[i] = n.Key()
	}
	return names, nil
}

// contactField completes a contact name, then values taken from that contact.
func contactField(values func(*types.Contact) []string) completer {
	return func(a *app, args []string, pos int) ([]string, error) {
		switch pos {
		case 0:
			return contactNames(a, args, pos)
		case 1:
			if values == nil {
				return nil, nil
			}
			c, err := a.contacts.Get(args[0])
			if err != nil {
				return nil, err
			}
			return values(c), nil
		}
		return nil, nil
	}
}

func phonesOf(c *types.Contact) []string {
	out := make([]string, len(c.Phones))
	for i, p := range c.Phones {
		out[i] = p.Value()
	}
	return out
}

func emailsOf(c *types.Contact) []string {
	out := make([]string, len(c.Emails))
	for i, e := range c.Emails {
		out[i] = e.Value()
	}
	return out
}

// noteTags completes a note name, then the tags on that note.
func noteTags(a *app, args []string, pos int) ([]string, error) {
	switch pos {
	case 0:
		return noteNames(a, args, pos)
	case 1:
		n, err := a.notes.Get(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]string, len(n.Tags))
		for i, t := range n.Tags {
			out[i] = t.Value()
		}
		return out, nil
	}
	return nil, nil
}

// knownTags completes a note name, then any tag already used by a note.
func knownTags(a *app, args []string, pos int) ([]string, error) {
	if pos == 0 {
		return noteNames(a, args, pos)
	}
	return tagNames(a, args, pos)
}

func tagNames(a *app, _ []string, _ int) ([]string, error) {
	tags, err := a.notes.DistinctTags()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Value()
	}
	return out, nil
}

func tableNames(_ *app, _ []string, _ int) ([]string, error) {
	return types.StandardTableNames, nil
}

// snapshotNames completes a table name, then the snapshots of that table.
func snapshotNames(a *app, args []string, pos int) ([]string, error) {
	switch pos {
	case 0:
		return tableNames(a, args, pos)
	case 1:
		var names []string
		err := a.onTable(&cobra.Command{}, args[0],
			func(s *snapshot.Store[*types.Contact]) (err error) { names, err = s.List(""); return err },
			func(s *snapshot.Store[*types.Note]) (err error) { names, err = s.List(""); return err })
		return names, err
	}
	return nil, nil
}
