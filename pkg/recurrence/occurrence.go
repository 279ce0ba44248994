package recurrence

import (
	"slices"
	"time"
)

// Occurrence is an optional next-occurrence date. Items without an anchor
// have an invalid Occurrence, which sorts after every valid one.
type Occurrence struct {
	Date  time.Time
	Valid bool
}

// OccurrenceOf returns the next occurrence of a, or an invalid Occurrence
// when a is nil.
func OccurrenceOf(a *Anchor, today time.Time) Occurrence {
	if a == nil {
		return Occurrence{}
	}
	return Occurrence{Date: NextOccurrence(*a, today), Valid: true}
}

// Compare orders occurrences by date, invalid last. Two invalid occurrences
// compare equal.
func (o Occurrence) Compare(other Occurrence) int {
	switch {
	case o.Valid && other.Valid:
		return o.Date.Compare(other.Date)
	case o.Valid:
		return -1
	case other.Valid:
		return 1
	}
	return 0
}

// Upcoming returns the items whose anchor occurs within days of today,
// ordered by next occurrence. Ties keep input order. Items for which anchorOf
// returns nil are left out.
func Upcoming[T any](items []T, anchorOf func(T) *Anchor, today time.Time, days int) ([]T, error) {
	if days <= 0 {
		return nil, ErrInvalidWindow
	}
	type entry struct {
		item T
		when Occurrence
	}
	var hits []entry
	for _, item := range items {
		a := anchorOf(item)
		if a == nil {
			continue
		}
		ok, err := IsWithinWindow(*a, today, days)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, entry{item, OccurrenceOf(a, today)})
		}
	}
	slices.SortStableFunc(hits, func(x, y entry) int { return x.when.Compare(y.when) })

	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out, nil
}

// SortByOccurrence stable-sorts items by next occurrence; items without an
// anchor go last.
func SortByOccurrence[T any](items []T, anchorOf func(T) *Anchor, today time.Time) {
	slices.SortStableFunc(items, func(x, y T) int {
		return OccurrenceOf(anchorOf(x), today).Compare(OccurrenceOf(anchorOf(y), today))
	})
}
