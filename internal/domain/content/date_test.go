package content

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerr "inkblog/internal/domain/errors"
)

func TestResolveMonth_Table(t *testing.T) {
	cases := map[string]int{
		"January": 0, "Jan": 0,
		"February": 1, "Feb": 1,
		"March": 2, "Mar": 2,
		"April": 3, "Apr": 3,
		"May":  4,
		"June": 5,
		"July": 6,
		"August": 7, "Aug": 7,
		"September": 8, "Sept": 8,
		"October": 9, "Oct": 9,
		"November": 10, "Nov": 10,
		"December": 11, "Dec": 11,
	}
	for name, want := range cases {
		assert.Equal(t, want, ResolveMonth(name), name)
		assert.True(t, KnownMonth(name), name)
	}
}

func TestResolveMonth_UnknownFallsBackToJanuary(t *testing.T) {
	for _, name := range []string{"Unknown", "", "jan", "Sep", "JULY", "Jun"} {
		assert.Equal(t, 0, ResolveMonth(name), name)
		assert.False(t, KnownMonth(name), name)
	}
}

func TestResolveDay_StripsOrdinal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1th", 1},
		{"1st", 1},
		{"2nd", 2},
		{"3rd", 3},
		{"24th", 24},
		{"9", 9},
		{" 7th", 7},
		{"12abc", 12},
		{"-3", -3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveDay(tc.in), tc.in)
	}
}

func TestResolveDay_MalformedIsNaN(t *testing.T) {
	for _, in := range []string{"", "th", "first", "x12"} {
		assert.True(t, math.IsNaN(ResolveDay(in)), in)
	}
}

func TestResolveDay_OnlyFirstSuffixRemoved(t *testing.T) {
	// "st" is removed once; the digits that follow are not reached.
	assert.Equal(t, 1.0, ResolveDay("1stst"))
	assert.True(t, math.IsNaN(ResolveDay("thth4")))
}

func TestResolveInstant_BuildsWallClockDate(t *testing.T) {
	got := ResolveInstant(PublishedDate{Month: "August", Day: "1th", Year: 2022})
	require.True(t, got.Valid())
	assert.Equal(t, time.Date(2022, time.August, 1, 0, 0, 0, 0, time.UTC), got.Time())
}

func TestResolveInstant_DayOverflowRolls(t *testing.T) {
	got := ResolveInstant(PublishedDate{Month: "Jan", Day: "32nd", Year: 2023})
	assert.Equal(t, time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), got.Time())
}

func TestResolveInstant_MalformedDayPropagatesNaN(t *testing.T) {
	got := ResolveInstant(PublishedDate{Month: "May", Day: "soon", Year: 2021})
	assert.False(t, got.Valid())
	assert.True(t, math.IsNaN(got.Sub(ResolveInstant(PublishedDate{Month: "May", Day: "1", Year: 2021}))))
	assert.True(t, got.Time().IsZero())
}

func TestResolveInstant_OutOfRangeYearIsNaN(t *testing.T) {
	assert.False(t, ResolveInstant(PublishedDate{Month: "Jan", Day: "1", Year: 300000}).Valid())
	assert.True(t, ResolveInstant(PublishedDate{Month: "Jan", Day: "1", Year: -200}).Valid())
}

func TestResolveInstant_TwoDigitYears(t *testing.T) {
	got := ResolveInstant(PublishedDate{Month: "Dec", Day: "24th", Year: 99})
	assert.Equal(t, time.Date(1999, time.December, 24, 0, 0, 0, 0, time.UTC), got.Time())

	got = ResolveInstant(PublishedDate{Month: "Jan", Day: "1st", Year: 0})
	assert.Equal(t, time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC), got.Time())

	got = ResolveInstant(PublishedDate{Month: "Jan", Day: "1st", Year: 100})
	assert.Equal(t, 100, got.Time().Year())
}

func TestInstantSub_SignedDelta(t *testing.T) {
	a := ResolveInstant(PublishedDate{Month: "July", Day: "4th", Year: 2022})
	b := ResolveInstant(PublishedDate{Month: "July", Day: "9th", Year: 2022})
	assert.Equal(t, float64(5*24*time.Hour/time.Millisecond), b.Sub(a))
	assert.Less(t, a.Sub(b), 0.0)
}

func TestNormalizer_DayFirstCoerces(t *testing.T) {
	n := Normalizer{Policy: DayFirst}
	got := n.Instant(PublishedDate{Month: "Oct", Day: "??", Year: 2020})
	assert.Equal(t, time.Date(2020, time.October, 1, 0, 0, 0, 0, time.UTC), got.Time())
	require.NoError(t, n.Check(PublishedDate{Month: "Oct", Day: "??", Year: 2020}))
}

func TestNormalizer_DayRejectChecks(t *testing.T) {
	n := Normalizer{Policy: DayReject}
	err := n.Check(PublishedDate{Month: "Oct", Day: "late", Year: 2020})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrMalformedDay))
	require.NoError(t, n.Check(PublishedDate{Month: "Oct", Day: "3rd", Year: 2020}))
}

func TestParseDayPolicy(t *testing.T) {
	for in, want := range map[string]DayPolicy{"": DayNaN, "nan": DayNaN, "first": DayFirst, "reject": DayReject} {
		got, ok := ParseDayPolicy(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseDayPolicy("zero")
	assert.False(t, ok)
}

func TestPublishedDate_Display(t *testing.T) {
	d := PublishedDate{Month: "November", Day: "11th", Year: 2024}
	assert.Equal(t, "November 11th, 2024", d.Display())
}
