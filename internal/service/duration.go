package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DurationUnit tags which calendar offset a Duration applies.
type DurationUnit int

const (
	Unlimited DurationUnit = iota
	Days
	Months
	Years
)

// Duration is the parsed form of a tier's free-text duration label.
// Unlimited packages never expire.
type Duration struct {
	Unit DurationUnit
	N    int
}

var durationPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)

// stems are checked in order against the folded unit word
var durationStems = []struct {
	unit  DurationUnit
	stems []string
}{
	{Months, []string{"month", "thang"}},
	{Years, []string{"year", "nam"}},
	{Days, []string{"day", "ngay"}},
}

// foldLabel lower-cases s and strips combining marks, so "3 Tháng" and
// "3 thang" compare equal.
func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// ParseDuration reads "<integer> <unit>" labels such as "3 months", "1 năm"
// or "30 ngày". Anything it cannot read, including session labels like
// "10 buổi", is Unlimited.
func ParseDuration(label string) Duration {
	m := durationPattern.FindStringSubmatch(foldLabel(label))
	if m == nil {
		return Duration{Unit: Unlimited}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return Duration{Unit: Unlimited}
	}
	for _, u := range durationStems {
		for _, stem := range u.stems {
			if strings.HasPrefix(m[2], stem) {
				return Duration{Unit: u.unit, N: n}
			}
		}
	}
	return Duration{Unit: Unlimited}
}

// ExpiresAt returns from advanced by the duration, or nil when unlimited.
func (d Duration) ExpiresAt(from time.Time) *time.Time {
	var t time.Time
	switch d.Unit {
	case Days:
		t = from.AddDate(0, 0, d.N)
	case Months:
		t = from.AddDate(0, d.N, 0)
	case Years:
		t = from.AddDate(d.N, 0, 0)
	default:
		return nil
	}
	return &t
}

func (d Duration) String() string {
	unit := ""
	switch d.Unit {
	case Days:
		unit = "day"
	case Months:
		unit = "month"
	case Years:
		unit = "year"
	default:
		return "unlimited"
	}
	if d.N != 1 {
		unit += "s"
	}
	return strconv.Itoa(d.N) + " " + unit
}

// MarshalText renders the canonical form in JSON responses.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
