// Package recurrence projects annual anchor dates (birthdays, anniversaries)
// onto concrete calendar dates and answers window queries over them.
//
// All dates are calendar dates represented as UTC midnight. Functions never
// read the wall clock; callers pass today explicitly.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

// ErrInvalidWindow is returned for a window that is not a positive number of
// days.
var ErrInvalidWindow = fmt.Errorf("days must be a positive integer: %w", types.ErrValidation)

// Anchor is the recurring month and day of a stored date.
type Anchor struct {
	Month time.Month
	Day   int
}

// AnchorOf returns the anchor of t.
func AnchorOf(t time.Time) Anchor {
	return Anchor{Month: t.Month(), Day: t.Day()}
}

// FromBirthday returns the anchor of b, or nil when b is nil.
func FromBirthday(b *types.Birthday) *Anchor {
	if b == nil || b.IsZero() {
		return nil
	}
	return &Anchor{Month: b.Month(), Day: b.Day()}
}

func (a Anchor) String() string {
	return fmt.Sprintf("%02d.%02d", a.Day, int(a.Month))
}

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Today returns the calendar date of now, in now's location, as UTC midnight.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Project returns the anchor's date in year. February 29 falls back to
// February 28 in non-leap years.
func Project(a Anchor, year int) time.Time {
	day := a.Day
	if a.Month == time.February && day == 29 && !IsLeapYear(year) {
		day = 28
	}
	return time.Date(year, a.Month, day, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the first projection of a on or after today.
func NextOccurrence(a Anchor, today time.Time) time.Time {
	today = Today(today)
	next := Project(a, today.Year())
	if next.Before(today) {
		next = Project(a, today.Year()+1)
	}
	return next
}

// DaysUntil returns the number of days from today to the next occurrence of a.
func DaysUntil(a Anchor, today time.Time) int {
	today = Today(today)
	return int(NextOccurrence(a, today).Sub(today).Hours() / 24)
}

// IsWithinWindow reports whether the next occurrence of a falls within
// [today, today+days], both ends inclusive.
func IsWithinWindow(a Anchor, today time.Time, days int) (bool, error) {
	if days <= 0 {
		return false, ErrInvalidWindow
	}
	today = Today(today)
	end := today.AddDate(0, 0, days)
	return !NextOccurrence(a, today).After(end), nil
}

// ParseDays reads a window length typed by a user.
func ParseDays(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidWindow, s)
	}
	return n, nil
}

// ParseDate reads a date in any of types.DateLayouts.
func ParseDate(s string) (time.Time, error) {
	return types.ParseDate(s)
}
