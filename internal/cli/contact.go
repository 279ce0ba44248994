package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assistant/internal/render"
	"github.com/mesh-intelligence/assistant/pkg/recurrence"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// run opens storage before calling fn.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func (a *app) newContactCmd() *cobra.Command {
	cmd := group("contact", "Manage contacts")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name> <phone> [phone...]",
			Short: "Create a contact with a name and phone numbers",
			Example: `  assistant contact add "John Doe" 0501234567
  assistant contact add Jane +380671112233 0661234567`,
			Args: minArgs(2),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				c, err := a.contacts.Create(args[0], args[1:]...)
				if err != nil {
					return err
				}
				return a.contactDone("Contact added", c)
			}),
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Remove a contact",
			Args:  exactArgs(1),
			ValidArgsFunction: a.complete(firstArg(contactNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				if err := a.contacts.Delete(args[0]); err != nil {
					return err
				}
				return a.done(fmt.Sprintf("Deleted contact %s", args[0]), nil, nil)
			}),
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Show one contact",
			Args:  exactArgs(1),
			ValidArgsFunction: a.complete(firstArg(contactNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				c, err := a.contacts.Get(args[0])
				if err != nil {
					return err
				}
				return a.emit(c, func(w io.Writer) error { return render.Contact(w, c) })
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all contacts in insertion order",
			Args:  noArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				all, err := a.contacts.All()
				if err != nil {
					return err
				}
				return a.emitContacts(all)
			}),
		},
		&cobra.Command{
			Use:   "search <text...>",
			Short: "Find contacts whose fields contain every word of text",
			Long: `Search matches contacts whose name, phones, emails, birthday or
address contain every whitespace-separated word of the query, ignoring
case. Results keep insertion order.`,
			Args: minArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				found, err := a.contacts.Search(joinArgs(args))
				if err != nil {
					return err
				}
				return a.emitContacts(found)
			}),
		},
		&cobra.Command{
			Use:   "rename <name> <new-name>",
			Short: "Rename a contact",
			Args:  exactArgs(2),
			ValidArgsFunction: a.complete(firstArg(contactNames)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				c, err := a.contacts.Rename(args[0], args[1])
				if err != nil {
					return err
				}
				return a.contactDone("Contact renamed", c)
			}),
		},
		&cobra.Command{
			Use:   "birthdays [days]",
			Short: "List birthdays within the next days (default from config)",
			Args:  rangeArgs(0, 1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				days := a.config.BirthdayWindow
				if days == 0 {
					days = types.DefaultBirthdayWindow
				}
				if len(args) == 1 {
					var err error
					if days, err = recurrence.ParseDays(args[0]); err != nil {
						return err
					}
				}
				upcoming, err := a.contacts.UpcomingBirthdays(days)
				if err != nil {
					return err
				}
				return a.emit(upcoming, func(w io.Writer) error {
					if len(upcoming) > 0 {
						fmt.Fprintln(w, render.DefaultStyles.Title.Render(
							fmt.Sprintf("Upcoming birthdays (next %d days)", days)))
					}
					return render.Upcoming(w, upcoming, a.contacts.Today())
				})
			}),
		},
	)
	return cmd
}

func (a *app) emitContacts(contacts []*types.Contact) error {
	return a.emit(contacts, func(w io.Writer) error { return render.Contacts(w, contacts) })
}

// newFieldCmd builds "<field> add|delete" style groups that edit one contact.
func (a *app) newFieldCmd(use, short string, subs ...fieldSub) *cobra.Command {
	cmd := group(use, short)
	for _, s := range subs {
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  s.args,
			ValidArgsFunction: a.complete(contactField(s.values)),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				c, err := a.contacts.Edit(args[0], func(b *types.ContactBuilder) *types.ContactBuilder {
					return s.edit(b, args[1:])
				})
				if err != nil {
					return err
				}
				return a.contactDone(s.done, c)
			}),
		})
	}
	return cmd
}

type fieldSub struct {
	use   string
	short string
	args  cobra.PositionalArgs
	done  string
	edit  func(b *types.ContactBuilder, rest []string) *types.ContactBuilder

	// values completes the argument after the contact name.
	values func(*types.Contact) []string
}

func (a *app) newPhoneCmd() *cobra.Command {
	return a.newFieldCmd("phone", "Manage contact phone numbers",
		fieldSub{
			use: "add <name> <phone>", short: "Add a phone number to a contact",
			args: exactArgs(2), done: "Phone added",
			edit: func(b *types.ContactBuilder, rest []string) *types.ContactBuilder { return b.AddPhone(rest[0]) },
		},
		fieldSub{
			use: "delete <name> <phone>", short: "Remove a phone number from a contact",
			args: exactArgs(2), done: "Phone removed", values: phonesOf,
			edit: func(b *types.ContactBuilder, rest []string) *types.ContactBuilder { return b.RemovePhone(rest[0]) },
		},
	)
}

func (a *app) newEmailCmd() *cobra.Command {
	return a.newFieldCmd("email", "Manage contact emails",
		fieldSub{
			use: "add <name> <email>", short: "Add an email to a contact",
			args: exactArgs(2), done: "Email added",
			edit: func(b *types.ContactBuilder, rest []string) *types.ContactBuilder { return b.AddEmail(rest[0]) },
		},
		fieldSub{
			use: "delete <name> <email>", short: "Remove an email from a contact",
			args: exactArgs(2), done: "Email removed", values: emailsOf,
			edit: func(b *types.ContactBuilder, rest []string) *types.ContactBuilder { return b.RemoveEmail(rest[0]) },
		},
	)
}

func (a *app) newAddressCmd() *cobra.Command {
	return a.newFieldCmd("address", "Manage contact addresses",
		fieldSub{
			use: "set <name> <address...>", short: "Set the address of a contact",
			args: minArgs(2), done: "Address set",
			edit: func(b *types.ContactBuilder, rest []string) *types.ContactBuilder {
				return b.SetAddress(joinArgs(rest))
			},
		},
		fieldSub{
			use: "clear <name>", short: "Clear the address of a contact",
			args: exactArgs(1), done: "Address cleared",
			edit: func(b *types.ContactBuilder, _ []string) *types.ContactBuilder { return b.ClearAddress() },
		},
	)
}

func (a *app) newBirthdayCmd() *cobra.Command {
	return a.newFieldCmd("birthday", "Manage contact birthdays",
		fieldSub{
			use:   "set <name> <date>",
			short: "Set the birthday of a contact (DD.MM.YYYY, YYYY-MM-DD, YYYY.MM.DD or DD/MM/YYYY)",
			args:  exactArgs(2), done: "Birthday set",
			edit: func(b *types.ContactBuilder, rest []string) *types.ContactBuilder { return b.SetBirthday(rest[0]) },
		},
		fieldSub{
			use: "clear <name>", short: "Clear the birthday of a contact",
			args: exactArgs(1), done: "Birthday cleared",
			edit: func(b *types.ContactBuilder, _ []string) *types.ContactBuilder { return b.ClearBirthday() },
		},
	)
}

func (a *app) newCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [month] [year]",
		Short: "Show a month calendar with birthdays",
		Example: `  assistant calendar
  assistant calendar 12
  assistant calendar 2 2028`,
		Args: rangeArgs(0, 2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			today := a.contacts.Today()
			month, year, err := calendarArgs(args, today)
			if err != nil {
				return err
			}
			entries, err := a.contacts.Birthdays(month, year)
			if err != nil {
				return err
			}
			byDay := make(map[int][]string)
			for _, e := range entries {
				byDay[e.Date.Day()] = append(byDay[e.Date.Day()], e.Contact.Name.Value())
			}
			return a.emit(entries, func(w io.Writer) error {
				fmt.Fprintln(w, render.DefaultStyles.Muted.Render(a.now().Format("Monday, 02 January 2006 15:04:05")))
				return render.Calendar(w, month, year, today, byDay)
			})
		}),
	}
}

func calendarArgs(args []string, today time.Time) (time.Month, int, error) {
	month, year := today.Month(), today.Year()
	if len(args) > 0 {
		m, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("%w: month must be 1-12, got %q", types.ErrInvalidDate, args[0])
		}
		month = time.Month(m)
	}
	if len(args) > 1 {
		y, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || y < 1 || y > 9999 {
			return 0, 0, fmt.Errorf("%w: year must be 1-9999, got %q", types.ErrInvalidDate, args[1])
		}
		year = y
	}
	return month, year, nil
}
