package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mesh-intelligence/assistant/pkg/recurrence"
	"github.com/mesh-intelligence/assistant/pkg/search"
	"github.com/mesh-intelligence/assistant/pkg/types"
)

// ContactService manages contacts keyed by name.
type ContactService struct {
	table types.Table[*types.Contact]
	opts  options
}

// NewContactService returns a service over table.
func NewContactService(table types.Table[*types.Contact], opts ...Option) *ContactService {
	return &ContactService{table: table, opts: newOptions("contacts", opts)}
}

// Policy returns the phone policy applied to new numbers.
func (s *ContactService) Policy() types.PhonePolicy { return s.opts.policy }

// Create stores a new contact with the given phone numbers, each checked
// against the phone policy.
func (s *ContactService) Create(name string, phones ...string) (*types.Contact, error) {
	c, err := types.NewContact(name)
	if err != nil {
		return nil, err
	}
	b := s.builder(c)
	for _, p := range phones {
		b.AddPhone(p)
	}
	c, err = b.Build()
	if err != nil {
		return nil, err
	}
	return s.Save(c)
}

// Save stores a new contact. Returns ErrAlreadyExists when the name is taken.
func (s *ContactService) Save(c *types.Contact) (*types.Contact, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: contact is nil", types.ErrValidation)
	}
	exists, err := s.Has(c.Key())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("contact %q: %w", c.Key(), types.ErrAlreadyExists)
	}
	if err := s.table.Set(c.Key(), c); err != nil {
		return nil, err
	}
	s.opts.logger.Debug("contact saved", "name", c.Key(), "id", c.ContactID)
	return c, nil
}

// Update replaces the contact stored under name with c. When c carries a
// different name the contact is renamed.
func (s *ContactService) Update(name string, c *types.Contact) (*types.Contact, error) {
	name = strings.TrimSpace(name)
	if c == nil {
		return nil, fmt.Errorf("%w: contact is nil", types.ErrValidation)
	}
	if err := s.mustExist(name); err != nil {
		return nil, err
	}
	if c.Key() != name {
		if err := s.table.Rename(name, c); err != nil {
			return nil, err
		}
	} else if err := s.table.Set(name, c); err != nil {
		return nil, err
	}
	s.opts.logger.Debug("contact updated", "name", c.Key())
	return c, nil
}

// Edit applies edit to a builder over the stored contact and saves the result.
// The builder uses the service's phone policy and clock.
func (s *ContactService) Edit(name string, edit func(*types.ContactBuilder) *types.ContactBuilder) (*types.Contact, error) {
	c, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	updated, err := edit(s.builder(c)).Build()
	if err != nil {
		return nil, err
	}
	return s.Update(name, updated)
}

// Get returns the contact stored under name.
func (s *ContactService) Get(name string) (*types.Contact, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return s.table.Get(strings.TrimSpace(name))
}

// All returns every contact in insertion order.
func (s *ContactService) All() ([]*types.Contact, error) {
	return s.table.All()
}

// Rename moves a contact to a new name. The contact moves to the end of the
// iteration order.
func (s *ContactService) Rename(name, newName string) (*types.Contact, error) {
	return s.Edit(name, func(b *types.ContactBuilder) *types.ContactBuilder {
		return b.SetName(newName)
	})
}

// Delete removes the contact stored under name.
func (s *ContactService) Delete(name string) error {
	if err := s.mustExist(name); err != nil {
		return err
	}
	if err := s.table.Delete(strings.TrimSpace(name)); err != nil {
		return err
	}
	s.opts.logger.Debug("contact deleted", "name", name)
	return nil
}

// Has reports whether a contact is stored under name. A blank name is a
// validation error.
func (s *ContactService) Has(name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	return s.table.Has(strings.TrimSpace(name))
}

// Search returns the contacts whose text contains every token of query, in
// insertion order. A blank query is a validation error.
func (s *ContactService) Search(query string) ([]*types.Contact, error) {
	m, err := search.NewMatcher(query)
	if err != nil {
		return nil, err
	}
	found, err := s.table.Filter(func(c *types.Contact) bool { return m.Match(c) })
	if err != nil {
		return nil, err
	}
	s.opts.logger.Debug("contact search", "tokens", m.Tokens(), "matches", len(found))
	return found, nil
}

// UpcomingBirthdays returns the contacts whose next birthday falls within
// days of today, soonest first. days must be positive.
func (s *ContactService) UpcomingBirthdays(days int) ([]*types.Contact, error) {
	if days <= 0 {
		return nil, recurrence.ErrInvalidWindow
	}
	all, err := s.table.All()
	if err != nil {
		return nil, err
	}
	return recurrence.Upcoming(all, birthdayAnchor, s.today(), days)
}

// BirthdayEntry is one birthday projected onto a calendar year.
type BirthdayEntry struct {
	Date    time.Time
	Contact *types.Contact
}

// Birthdays returns the birthdays that fall in month of year, ordered by day
// and then by insertion order.
func (s *ContactService) Birthdays(month time.Month, year int) ([]BirthdayEntry, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", types.ErrInvalidDate, int(month))
	}
	all, err := s.table.All()
	if err != nil {
		return nil, err
	}
	var out []BirthdayEntry
	for _, c := range all {
		a := birthdayAnchor(c)
		if a == nil {
			continue
		}
		d := recurrence.Project(*a, year)
		if d.Month() == month {
			out = append(out, BirthdayEntry{Date: d, Contact: c})
		}
	}
	slices.SortStableFunc(out, func(x, y BirthdayEntry) int { return x.Date.Compare(y.Date) })
	return out, nil
}

// Today returns the service clock's calendar date.
func (s *ContactService) Today() time.Time { return s.today() }

func (s *ContactService) today() time.Time { return recurrence.Today(s.opts.now()) }

func (s *ContactService) builder(c *types.Contact) *types.ContactBuilder {
	return c.Update().WithPhonePolicy(s.opts.policy).WithClock(s.opts.now)
}

func (s *ContactService) mustExist(name string) error {
	exists, err := s.Has(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("contact %q: %w", strings.TrimSpace(name), types.ErrNotFound)
	}
	return nil
}

func birthdayAnchor(c *types.Contact) *recurrence.Anchor {
	return recurrence.FromBirthday(c.Birthday)
}
