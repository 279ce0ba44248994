package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayouts are the date formats accepted by ParseDate, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	BirthdayLayout,
	"2006.01.02",
	"02/01/2006",
}

// ParseDate parses value with the first matching layout in DateLayouts.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: date cannot be empty", ErrInvalidDate)
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date format %q", ErrInvalidDate, v)
}
