package timecalc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD layout used as record key.
const DateKeyLayout = "2006-01-02"

// Day is the length of one calendar day used for interval arithmetic.
const Day = 24 * time.Hour

var (
	dateKeyRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDateRe = regexp.MustCompile(`^(\d{4})[/.-](\d{1,2})[/.-](\d{1,2})$`)
)

// DateKey formats t as YYYY-MM-DD in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a strict YYYY-MM-DD key and returns midnight in loc.
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	if !dateKeyRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date key %q: want YYYY-MM-DD", s)
	}
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", s, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// NormalizeDateKey turns a date that may have round-tripped through a
// spreadsheet as a native date value into a YYYY-MM-DD key. Timestamps are
// converted to loc before the calendar day is extracted.
func NormalizeDateKey(raw string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	if dateKeyRe.MatchString(raw) {
		if _, err := time.Parse(DateKeyLayout, raw); err != nil {
			return "", fmt.Errorf("invalid date %q: %w", raw, err)
		}
		return raw, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateKey(t.In(loc)), nil
		}
	}
	if m := slashDateRe.FindStringSubmatch(raw); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
		if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
			return "", fmt.Errorf("invalid date %q", raw)
		}
		return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), nil
	}
	return "", fmt.Errorf("cannot normalize date %q", raw)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SundayOnOrBefore returns midnight of the most recent Sunday at or before t.
func SundayOnOrBefore(t time.Time) time.Time {
	d := StartOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// MonthRange returns the first and last day of t's calendar month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first, last
}

// CeilDays returns d expressed in whole days, rounded up.
func CeilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(Day)))
}

// LoadLocation resolves an IANA name; "" and "Local" mean the system zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
