package models

import (
	"fmt"
	"time"
)

// DateKeyLayout is the wire and storage format of a date-key.
const DateKeyLayout = "2006-01-02"

// DateKey is a calendar date at day granularity, used to partition bookings.
type DateKey string

// DateKeyOf reduces t to its calendar date in t's own location.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(DateKeyLayout))
}

// ParseDateKey validates and normalizes a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateKeyOf(t), nil
}

// Time returns midnight of the date in loc.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateKeyLayout, string(k), loc)
}

func (k DateKey) String() string { return string(k) }

// StartOfDay truncates t to midnight in loc, ignoring time-of-day.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
