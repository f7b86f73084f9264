package content

import (
	"math"
	"regexp"
	"time"
	"unicode"

	domainerr "inkblog/internal/domain/errors"
)

// DayPolicy decides what happens to a published day with no leading digits.
type DayPolicy string

const (
	// DayNaN lets the malformed day propagate as a NaN instant. Posts with a
	// NaN instant land in an unspecified position of the ordered list.
	DayNaN DayPolicy = "nan"
	// DayFirst coerces a malformed day to the first of the month.
	DayFirst DayPolicy = "first"
	// DayReject makes Check fail so the post can be dropped during ingest.
	DayReject DayPolicy = "reject"
)

func ParseDayPolicy(s string) (DayPolicy, bool) {
	switch DayPolicy(s) {
	case "", DayNaN:
		return DayNaN, true
	case DayFirst:
		return DayFirst, true
	case DayReject:
		return DayReject, true
	}
	return "", false
}

// Instant is a wall-clock point in milliseconds since the Unix epoch,
// without a zone. Instants are ordered by subtraction; a NaN instant compares
// false against everything.
type Instant float64

// maxTimeValue bounds instants to ±100,000,000 days around the epoch.
const maxTimeValue = 8.64e15

func (i Instant) Sub(o Instant) float64 {
	return float64(i) - float64(o)
}

func (i Instant) Valid() bool {
	return !math.IsNaN(float64(i))
}

// Time converts the instant to a UTC time.Time. Invalid instants give the
// zero time.
func (i Instant) Time() time.Time {
	if !i.Valid() {
		return time.Time{}
	}
	return time.UnixMilli(int64(i)).UTC()
}

var ordinalSuffix = regexp.MustCompile(`st|nd|rd|th`)

// ResolveMonth maps a month name or its standard abbreviation to a zero-based
// index. Unknown names map to 0 (January).
func ResolveMonth(month string) int {
	idx, _ := lookupMonth(month)
	return idx
}

// KnownMonth reports whether month is in the month table.
func KnownMonth(month string) bool {
	_, ok := lookupMonth(month)
	return ok
}

func lookupMonth(month string) (int, bool) {
	switch month {
	case "January", "Jan":
		return 0, true
	case "February", "Feb":
		return 1, true
	case "March", "Mar":
		return 2, true
	case "April", "Apr":
		return 3, true
	case "May":
		return 4, true
	case "June":
		return 5, true
	case "July":
		return 6, true
	case "August", "Aug":
		return 7, true
	case "September", "Sept":
		return 8, true
	case "October", "Oct":
		return 9, true
	case "November", "Nov":
		return 10, true
	case "December", "Dec":
		return 11, true
	}
	return 0, false
}

// ResolveDay strips the first ordinal suffix from day and parses the leading
// integer. It returns NaN when day has no leading digits.
func ResolveDay(day string) float64 {
	if loc := ordinalSuffix.FindStringIndex(day); loc != nil {
		day = day[:loc[0]] + day[loc[1]:]
	}
	return parseLeadingInt(day)
}

// parseLeadingInt reads optional whitespace, an optional sign and a run of
// decimal digits. Trailing input is ignored.
func parseLeadingInt(s string) float64 {
	i := 0
	for i < len(s) && unicode.IsSpace(rune(s[i])) {
		i++
	}
	sign := 1.0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	start := i
	n := 0.0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + float64(s[i]-'0')
		i++
	}
	if i == start {
		return math.NaN()
	}
	return sign * n
}

// Normalizer turns published dates into instants under a day policy. The
// zero value uses DayNaN.
type Normalizer struct {
	Policy DayPolicy
}

// ResolveInstant resolves d with the default policy.
func ResolveInstant(d PublishedDate) Instant {
	return Normalizer{}.Instant(d)
}

// Instant never fails. Under DayReject a malformed day still yields NaN;
// callers are expected to have filtered such dates with Check.
func (n Normalizer) Instant(d PublishedDate) Instant {
	day := ResolveDay(d.Day)
	if math.IsNaN(day) && n.Policy == DayFirst {
		day = 1
	}
	return makeInstant(d.Year, ResolveMonth(d.Month), day)
}

// Check returns ErrMalformedDay when the policy is DayReject and d has no
// usable day number.
func (n Normalizer) Check(d PublishedDate) error {
	if n.Policy != DayReject {
		return nil
	}
	if math.IsNaN(ResolveDay(d.Day)) {
		return domainerr.ErrMalformedDay
	}
	return nil
}

// makeInstant follows the browser Date constructor: years 0 through 99 mean
// 1900 through 1999.
func makeInstant(year, month int, day float64) Instant {
	if year >= 0 && year <= 99 {
		year += 1900
	}
	if math.IsNaN(day) || math.Abs(day) > 2e8 || year > 400000 || year < -400000 {
		return Instant(math.NaN())
	}
	t := time.Date(year, time.Month(month+1), int(day), 0, 0, 0, 0, time.UTC)
	ms := float64(t.UnixMilli())
	if math.Abs(ms) > maxTimeValue {
		return Instant(math.NaN())
	}
	return Instant(ms)
}
