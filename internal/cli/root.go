// Package cli implements the assistant command-line interface: contacts,
// notes, snapshots and an interactive shell over the same command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assistant/internal/render"
	"github.com/mesh-intelligence/assistant/internal/service"
	"github.com/mesh-intelligence/assistant/internal/snapshot"
	"github.com/mesh-intelligence/assistant/internal/sqlite"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app carries the state shared by one invocation, or by every line of a
// shell session.
type app struct {
	flags  rootFlags
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	configDir string
	config    types.Config
	logger    *slog.Logger

	backend      *sqlite.Backend
	contactTable types.Table[*types.Contact]
	noteTable    types.Table[*types.Note]
	contacts     *service.ContactService
	notes        *service.NoteService

	contactSnapshots *snapshot.Store[*types.Contact]
	noteSnapshots    *snapshot.Store[*types.Note]

	inShell bool
}

// Option configures an invocation.
type Option func(*app)

// WithIO replaces stdin, stdout and stderr.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *app) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithClock sets the time source used for birthdays, timestamps and
// snapshot names.
func WithClock(now func() time.Time) Option {
	return func(a *app) {
		if now != nil {
			a.now = now
		}
	}
}

func newApp(opts ...Option) *app {
	a := &app{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs the command line in args and returns the process exit code.
func Execute(args []string, opts ...Option) int {
	a := newApp(opts...)
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.printError(err)
		return exitCode(err)
	}
	return exitSuccess
}

// rootCmd builds the command tree bound to a. The shell builds a fresh tree
// for every line.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "A personal assistant for contacts and notes",
		Long: `Assistant keeps an address book and a notebook on local disk.

Contacts carry phones, emails, an address and a birthday; notes carry a
title, content and colored tags. Both can be searched, listed and saved
as named snapshots.`,
		Version:           Version,
		Args:              noArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.configure,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(cmd, "%s", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", a.flags.configDir, "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", a.flags.dataDir, "data directory (default: platform data dir)")
	pf.BoolVar(&a.flags.jsonMode, "json", a.flags.jsonMode, "output as JSON")
	pf.StringVar(&a.flags.logLevel, "log-level", a.flags.logLevel, "log level: debug, info, warn, error")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newContactCmd(),
		a.newPhoneCmd(),
		a.newEmailCmd(),
		a.newAddressCmd(),
		a.newBirthdayCmd(),
		a.newCalendarCmd(),
		a.newNoteCmd(),
		a.newSnapshotCmd(),
		a.newShellCmd(),
	)
	return root
}

// group returns a parent command that prints its help when run bare and
// rejects unknown subcommands.
func group(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
}

// configure loads config.yaml and sets up logging. Storage is opened lazily
// by the commands that need it.
func (a *app) configure(cmd *cobra.Command, args []string) error {
	if a.inShell || cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}
	cfg, configDir, err := a.loadSettings()
	if err != nil {
		return err
	}
	a.config, a.configDir = cfg, configDir
	a.logger = newLogger(a.errOut, cfg.LogLevel)
	a.logger.Debug("configuration loaded", "config_dir", configDir, "data_dir", cfg.DataDir)
	return nil
}

// open attaches the backend and builds the services once per app.
func (a *app) open() error {
	if a.backend != nil {
		return nil
	}
	policy, err := types.NewPhonePolicy(a.config.PhoneRegion)
	if err != nil {
		return err
	}
	backend := sqlite.NewBackend(sqlite.WithLogger(a.logger), sqlite.WithClock(a.now))
	if err := backend.Attach(a.config); err != nil {
		return fmt.Errorf("attach backend: %w", err)
	}
	contacts, err := backend.Contacts()
	if err != nil {
		backend.Detach()
		return err
	}
	notes, err := backend.Notes()
	if err != nil {
		backend.Detach()
		return err
	}
	opts := []service.Option{
		service.WithLogger(a.logger),
		service.WithClock(a.now),
		service.WithPhonePolicy(policy),
	}
	a.backend = backend
	a.contactTable, a.noteTable = contacts, notes
	a.contacts = service.NewContactService(contacts, opts...)
	a.notes = service.NewNoteService(notes, opts...)
	return nil
}

func (a *app) close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Detach()
	a.backend, a.contactTable, a.noteTable = nil, nil, nil
	a.contacts, a.notes = nil, nil
	return err
}

func (a *app) printError(err error) {
	fmt.Fprintln(a.errOut, render.DefaultStyles.Error.Render("Error: "+err.Error()))
}

// exitCode maps user errors to 1 and everything else to 2.
func exitCode(err error) int {
	if types.IsUserError(err) {
		return exitUserError
	}
	return exitSysError
}

// errUsage marks bad invocations: wrong argument counts, unknown commands
// and flag errors.
var errUsage = fmt.Errorf("usage: %w", types.ErrValidation)

func usageError(cmd *cobra.Command, format string, args ...any) error {
	return fmt.Errorf("%w: %s (see %q)", errUsage, fmt.Sprintf(format, args...), cmd.CommandPath()+" --help")
}
