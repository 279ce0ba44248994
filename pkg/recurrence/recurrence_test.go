package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/assistant/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2025))
}

func TestProject(t *testing.T) {
	leap := Anchor{Month: time.February, Day: 29}
	assert.Equal(t, date(2025, time.February, 28), Project(leap, 2025))
	assert.Equal(t, date(2024, time.February, 29), Project(leap, 2024))
	assert.Equal(t, date(2030, time.July, 4), Project(Anchor{time.July, 4}, 2030))
}

func TestNextOccurrence(t *testing.T) {
	today := date(2024, time.June, 15)
	tests := []struct {
		name   string
		anchor Anchor
		want   time.Time
	}{
		{"today", Anchor{time.June, 15}, today},
		{"later this year", Anchor{time.June, 20}, date(2024, time.June, 20)},
		{"already passed", Anchor{time.June, 14}, date(2025, time.June, 14)},
		{"leap day rolls to non-leap year", Anchor{time.February, 29}, date(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOccurrence(tt.anchor, today))
		})
	}
}

func TestNextOccurrence_IgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2024, time.June, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, date(2024, time.June, 15), NextOccurrence(Anchor{time.June, 15}, now))
}

func TestIsWithinWindow(t *testing.T) {
	today := date(2024, time.June, 15)
	anchorToday := AnchorOf(today)

	ok, err := IsWithinWindow(anchorToday, today, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsWithinWindow(Anchor{time.June, 22}, today, 7)
	require.NoError(t, err)
	assert.True(t, ok, "upper bound is inclusive")

	ok, err = IsWithinWindow(Anchor{time.June, 23}, today, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsWithinWindow(Anchor{time.June, 14}, today, 7)
	require.NoError(t, err)
	assert.False(t, ok, "yesterday is next year")
}

func TestIsWithinWindow_YearRollover(t *testing.T) {
	today := date(2024, time.December, 31)
	newYear := Anchor{time.January, 1}

	ok, err := IsWithinWindow(newYear, today, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = IsWithinWindow(newYear, today, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = IsWithinWindow(newYear, today, -3)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestDaysUntil(t *testing.T) {
	today := date(2024, time.December, 31)
	assert.Equal(t, 0, DaysUntil(Anchor{time.December, 31}, today))
	assert.Equal(t, 1, DaysUntil(Anchor{time.January, 1}, today))
	assert.Equal(t, 364, DaysUntil(Anchor{time.December, 30}, today))
}

func TestParseDays(t *testing.T) {
	n, err := ParseDays(" 14 ")
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	for _, in := range []string{"", "0", "-1", "week"} {
		_, err := ParseDays(in)
		assert.ErrorIs(t, err, ErrInvalidWindow, in)
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, time.March, 1, 1, 30, 0, 0, loc)
	assert.Equal(t, date(2024, time.March, 1), Today(now))
}

func TestFromBirthday(t *testing.T) {
	assert.Nil(t, FromBirthday(nil))

	b, err := types.ParseBirthday("29.02.2000", date(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, &Anchor{time.February, 29}, FromBirthday(&b))
}

func TestParseDate_Delegates(t *testing.T) {
	got, err := ParseDate("2000.11.05")
	require.NoError(t, err)
	assert.Equal(t, AnchorOf(got), Anchor{time.November, 5})
}
