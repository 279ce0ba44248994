package types

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Name identifies a contact or a note. It is also the storage key.
type Name struct {
	value string
}

// NewName trims value and rejects blank names.
func NewName(value string) (Name, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Name{}, ErrInvalidName
	}
	return Name{value: v}, nil
}

// Value returns the name text.
func (n Name) Value() string { return n.value }

func (n Name) String() string { return n.value }

// Text implements search.Texter.
func (n Name) Text() (string, bool) { return n.value, n.value != "" }

// Phone is a non-blank phone number. Region rules are applied separately by
// a PhonePolicy so that stored numbers survive a region change.
type Phone struct {
	value string
}

// NewPhone trims value and rejects blank numbers.
func NewPhone(value string) (Phone, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Phone{}, fmt.Errorf("%w: phone cannot be empty", ErrInvalidPhone)
	}
	return Phone{value: v}, nil
}

func (p Phone) Value() string { return p.value }

func (p Phone) String() string { return p.value }

func (p Phone) Text() (string, bool) { return p.value, p.value != "" }

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Email is a syntactically valid address with a lowercased domain.
type Email struct {
	value string
}

// NewEmail validates and normalizes an email address.
func NewEmail(value string) (Email, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Email{}, fmt.Errorf("%w: email cannot be empty", ErrInvalidEmail)
	}
	if !emailPattern.MatchString(v) {
		return Email{}, fmt.Errorf("%w: %q has invalid format", ErrInvalidEmail, v)
	}
	local, domain, _ := strings.Cut(v, "@")
	if strings.Contains(local, "..") || strings.Contains(domain, "..") {
		return Email{}, fmt.Errorf("%w: %q contains consecutive dots", ErrInvalidEmail, v)
	}
	if len(v) > 254 || len(local) > 64 {
		return Email{}, fmt.Errorf("%w: %q is too long", ErrInvalidEmail, v)
	}
	return Email{value: local + "@" + strings.ToLower(domain)}, nil
}

func (e Email) Value() string { return e.value }

func (e Email) String() string { return e.value }

func (e Email) Text() (string, bool) { return e.value, e.value != "" }

// Address length limits in runes.
const (
	AddressMinLen = 3
	AddressMaxLen = 255
)

const addressPunctuation = ",.-/'’#"

// Address is a free-form postal address with collapsed whitespace.
type Address struct {
	value string
}

// NewAddress validates the characters and length of value.
func NewAddress(value string) (Address, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Address{}, fmt.Errorf("%w: address cannot be empty", ErrInvalidAddress)
	}
	n := len([]rune(raw))
	if n < AddressMinLen {
		return Address{}, fmt.Errorf("%w: address is too short", ErrInvalidAddress)
	}
	if n > AddressMaxLen {
		return Address{}, fmt.Errorf("%w: address is too long", ErrInvalidAddress)
	}

	hasLetter := false
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r), r == ' ', strings.ContainsRune(addressPunctuation, r):
		default:
			return Address{}, fmt.Errorf("%w: address contains invalid character %q", ErrInvalidAddress, r)
		}
	}
	if !hasLetter {
		return Address{}, fmt.Errorf("%w: address must contain at least one letter", ErrInvalidAddress)
	}

	return Address{value: strings.Join(strings.Fields(raw), " ")}, nil
}

func (a Address) Value() string { return a.value }

func (a Address) String() string { return a.value }

func (a Address) Text() (string, bool) { return a.value, a.value != "" }

// Title is the heading of a note.
type Title struct {
	value string
}

// NewTitle rejects blank titles. Surrounding whitespace is kept.
func NewTitle(value string) (Title, error) {
	if strings.TrimSpace(value) == "" {
		return Title{}, ErrInvalidTitle
	}
	return Title{value: value}, nil
}

func (t Title) Value() string { return t.value }

func (t Title) String() string { return t.value }

func (t Title) Text() (string, bool) { return t.value, t.value != "" }

// ContentMinLen is the minimum trimmed length of note content, in runes.
const ContentMinLen = 10

// Content is the body of a note.
type Content struct {
	value string
}

// NewContent rejects bodies shorter than ContentMinLen once trimmed.
func NewContent(value string) (Content, error) {
	if len([]rune(strings.TrimSpace(value))) < ContentMinLen {
		return Content{}, ErrInvalidContent
	}
	return Content{value: value}, nil
}

func (c Content) Value() string { return c.value }

func (c Content) String() string { return c.value }

func (c Content) Text() (string, bool) { return c.value, c.value != "" }

func (n Name) MarshalText() ([]byte, error) { return []byte(n.value), nil }

func (p Phone) MarshalText() ([]byte, error) { return []byte(p.value), nil }

func (e Email) MarshalText() ([]byte, error) { return []byte(e.value), nil }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.value), nil }

func (t Title) MarshalText() ([]byte, error) { return []byte(t.value), nil }

func (c Content) MarshalText() ([]byte, error) { return []byte(c.value), nil }
