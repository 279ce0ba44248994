package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

const shellPrompt = "> "

var errUnterminatedQuote = fmt.Errorf("%w: unterminated quote or escape", types.ErrValidation)

func (a *app) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Long: `Shell reads one command per line and runs it through the same command
tree as the command line, without the leading "assistant". Quote
arguments that contain spaces. Errors in a command are printed and the
shell keeps going. Type exit or close to leave.`,
		Args: noArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if a.inShell {
				return usageError(cmd, "already in the shell")
			}
			return a.shell()
		}),
	}
}

// shell runs the read-dispatch loop until exit, close or end of input. User
// errors are printed and the loop continues; other errors end it.
func (a *app) shell() error {
	a.inShell = true
	base := a.flags
	defer func() { a.inShell, a.flags = false, base }()

	fmt.Fprintln(a.out, "Welcome to the assistant! Type help for commands, exit or close to leave.")
	sc := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, shellPrompt)
		if !sc.Scan() {
			break
		}
		fields, err := splitLine(sc.Text())
		if err != nil {
			a.printError(err)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "exit", "close":
			fmt.Fprintln(a.out, "Good bye!")
			return nil
		case "hello":
			fmt.Fprintln(a.out, "How can I help you?")
			continue
		}

		a.flags = base
		root := a.rootCmd()
		root.SetArgs(fields)
		if err := root.Execute(); err != nil {
			if !types.IsUserError(err) {
				return err
			}
			a.printError(err)
		}
	}
	fmt.Fprintln(a.out)
	return sc.Err()
}

// splitLine splits a shell line into words with POSIX-style quoting. An
// unquoted operator such as | or & would end the command early, so it is
// reported instead.
func splitLine(line string) ([]string, error) {
	p := shellwords.NewParser()
	words, err := p.Parse(line)
	if err != nil {
		return nil, errUnterminatedQuote
	}
	if p.Position >= 0 {
		op := string([]rune(line)[p.Position])
		return nil, fmt.Errorf("%w: quote %q to use it in an argument", types.ErrValidation, op)
	}
	return words, nil
}
