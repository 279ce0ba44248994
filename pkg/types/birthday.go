package types

import (
	"fmt"
	"time"
)

// BirthdayLayout is the input and display format of birthdays.
const BirthdayLayout = "02.01.2006"

// Birthday is a calendar date that is not in the future. Only its month and
// day matter for recurrence; the year is kept for display.
type Birthday struct {
	date time.Time
}

// NewBirthday truncates value to its calendar date and rejects dates after
// today's date.
func NewBirthday(value, today time.Time) (Birthday, error) {
	d := dateOf(value)
	if d.After(dateOf(today)) {
		return Birthday{}, ErrFutureBirthday
	}
	return Birthday{date: d}, nil
}

// ParseBirthday parses value in BirthdayLayout.
func ParseBirthday(value string, today time.Time) (Birthday, error) {
	t, err := time.Parse(BirthdayLayout, value)
	if err != nil {
		return Birthday{}, fmt.Errorf("%w: birthday must be in format DD.MM.YYYY, for example %s",
			ErrInvalidDate, today.Format(BirthdayLayout))
	}
	return NewBirthday(t, today)
}

// Date returns the birthday as UTC midnight.
func (b Birthday) Date() time.Time { return b.date }

// Month and Day are the recurring part of the birthday.
func (b Birthday) Month() time.Month { return b.date.Month() }

func (b Birthday) Day() int { return b.date.Day() }

func (b Birthday) IsZero() bool { return b.date.IsZero() }

func (b Birthday) String() string { return b.date.Format(BirthdayLayout) }

func (b Birthday) Text() (string, bool) {
	if b.date.IsZero() {
		return "", false
	}
	return b.String(), true
}

func (b Birthday) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// dateOf returns the calendar date of t, in t's own location, as UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
