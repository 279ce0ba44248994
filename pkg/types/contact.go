package types

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Contact is an address book record keyed by its name.
type Contact struct {
	ContactID string    `json:"contact_id"` // UUID v7, assigned by the backend on create.
	Name      Name      `json:"name"`
	Phones    []Phone   `json:"phones"`
	Emails    []Email   `json:"emails"`
	Birthday  *Birthday `json:"birthday,omitempty"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContact builds a contact with the given name and phone numbers. Phone
// numbers are checked for blankness only; region rules belong to PhonePolicy.
func NewContact(name string, phones ...string) (*Contact, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	c := &Contact{Name: n}
	for _, raw := range phones {
		p, err := NewPhone(raw)
		if err != nil {
			return nil, err
		}
		c.Phones = append(c.Phones, p)
	}
	return c, nil
}

// Key returns the storage key of the contact.
func (c *Contact) Key() string { return c.Name.Value() }

// CollectText implements search.Searchable.
func (c *Contact) CollectText(walk func(any)) {
	walk(c.Name)
	walk(c.Phones)
	walk(c.Emails)
	walk(c.Birthday)
	walk(c.Address)
}

// HasPhone reports whether the contact has the phone number value.
func (c *Contact) HasPhone(value string) bool {
	v := strings.TrimSpace(value)
	return slices.ContainsFunc(c.Phones, func(p Phone) bool { return p.Value() == v })
}

// HasEmail reports whether the contact has the email address e.
func (c *Contact) HasEmail(e Email) bool {
	return slices.Contains(c.Emails, e)
}

// Clone returns a deep copy of c.
func (c *Contact) Clone() *Contact {
	cp := *c
	cp.Phones = slices.Clone(c.Phones)
	cp.Emails = slices.Clone(c.Emails)
	if c.Birthday != nil {
		b := *c.Birthday
		cp.Birthday = &b
	}
	if c.Address != nil {
		a := *c.Address
		cp.Address = &a
	}
	return &cp
}

func (c *Contact) String() string {
	phones := joinOrDash(c.Phones)
	emails := joinOrDash(c.Emails)
	birthday, address := "-", "-"
	if c.Birthday != nil {
		birthday = c.Birthday.String()
	}
	if c.Address != nil {
		address = c.Address.String()
	}
	return fmt.Sprintf("Name: %s\nPhones: %s\nEmails: %s\nBirthday: %s\nAddress: %s",
		c.Name, phones, emails, birthday, address)
}

func joinOrDash[T fmt.Stringer](values []T) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Update starts a builder over a copy of c. The original is untouched until
// the caller stores the result of Build.
func (c *Contact) Update() *ContactBuilder {
	return &ContactBuilder{contact: c.Clone(), now: time.Now}
}

// ContactBuilder applies a chain of edits to a contact. The first failing
// edit is remembered and returned by Build; later edits are skipped.
type ContactBuilder struct {
	contact *Contact
	policy  PhonePolicy
	now     func() time.Time
	err     error
}

// WithPhonePolicy sets the policy used by AddPhone.
func (b *ContactBuilder) WithPhonePolicy(p PhonePolicy) *ContactBuilder {
	b.policy = p
	return b
}

// WithClock sets the clock used for birthday checks and UpdatedAt.
func (b *ContactBuilder) WithClock(now func() time.Time) *ContactBuilder {
	b.now = now
	return b
}

func (b *ContactBuilder) fail(err error) *ContactBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// SetName renames the contact.
func (b *ContactBuilder) SetName(name string) *ContactBuilder {
	if b.err != nil {
		return b
	}
	n, err := NewName(name)
	if err != nil {
		return b.fail(err)
	}
	b.contact.Name = n
	return b
}

// AddPhone appends a phone number valid for the builder's policy.
func (b *ContactBuilder) AddPhone(value string) *ContactBuilder {
	if b.err != nil {
		return b
	}
	p, err := NewPhone(value)
	if err != nil {
		return b.fail(err)
	}
	if b.contact.HasPhone(p.Value()) {
		return b.fail(fmt.Errorf("contact %s already has phone %s: %w", b.contact.Name, p, ErrAlreadyExists))
	}
	if err := b.policy.Validate(p.Value()); err != nil {
		return b.fail(err)
	}
	b.contact.Phones = append(b.contact.Phones, p)
	return b
}

// RemovePhone drops the phone number value.
func (b *ContactBuilder) RemovePhone(value string) *ContactBuilder {
	if b.err != nil {
		return b
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return b.fail(fmt.Errorf("%w: phone cannot be empty", ErrInvalidPhone))
	}
	if !b.contact.HasPhone(v) {
		return b.fail(fmt.Errorf("contact %s does not have phone %s: %w", b.contact.Name, v, ErrNotFound))
	}
	b.contact.Phones = slices.DeleteFunc(b.contact.Phones, func(p Phone) bool { return p.Value() == v })
	return b
}

// ClearPhones removes every phone number.
func (b *ContactBuilder) ClearPhones() *ContactBuilder {
	if b.err == nil {
		b.contact.Phones = nil
	}
	return b
}

// AddEmail appends a new email address.
func (b *ContactBuilder) AddEmail(value string) *ContactBuilder {
	if b.err != nil {
		return b
	}
	e, err := NewEmail(value)
	if err != nil {
		return b.fail(err)
	}
	if b.contact.HasEmail(e) {
		return b.fail(fmt.Errorf("contact %s already has email %s: %w", b.contact.Name, e, ErrAlreadyExists))
	}
	b.contact.Emails = append(b.contact.Emails, e)
	return b
}

// RemoveEmail drops an existing email address.
func (b *ContactBuilder) RemoveEmail(value string) *ContactBuilder {
	if b.err != nil {
		return b
	}
	e, err := NewEmail(value)
	if err != nil {
		return b.fail(err)
	}
	if !b.contact.HasEmail(e) {
		return b.fail(fmt.Errorf("contact %s does not have email %s: %w", b.contact.Name, e, ErrNotFound))
	}
	b.contact.Emails = slices.DeleteFunc(b.contact.Emails, func(x Email) bool { return x == e })
	return b
}

// SetBirthday replaces the birthday. value may use any of DateLayouts.
func (b *ContactBuilder) SetBirthday(value string) *ContactBuilder {
	if b.err != nil {
		return b
	}
	t, err := ParseDate(value)
	if err != nil {
		return b.fail(err)
	}
	bd, err := NewBirthday(t, b.now())
	if err != nil {
		return b.fail(err)
	}
	b.contact.Birthday = &bd
	return b
}

// ClearBirthday removes the birthday. Clearing an absent birthday is a no-op.
func (b *ContactBuilder) ClearBirthday() *ContactBuilder {
	if b.err == nil {
		b.contact.Birthday = nil
	}
	return b
}

// SetAddress replaces the address.
func (b *ContactBuilder) SetAddress(value string) *ContactBuilder {
	if b.err != nil {
		return b
	}
	a, err := NewAddress(value)
	if err != nil {
		return b.fail(err)
	}
	b.contact.Address = &a
	return b
}

// ClearAddress removes the address; it fails when there is none.
func (b *ContactBuilder) ClearAddress() *ContactBuilder {
	if b.err != nil {
		return b
	}
	if b.contact.Address == nil {
		return b.fail(fmt.Errorf("contact %s does not have an address: %w", b.contact.Name, ErrNotFound))
	}
	b.contact.Address = nil
	return b
}

// Build returns the edited copy, or the first error recorded by the chain.
func (b *ContactBuilder) Build() (*Contact, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.contact.Name.Value() == "" {
		return nil, ErrInvalidName
	}
	b.contact.UpdatedAt = b.now().UTC()
	return b.contact, nil
}
