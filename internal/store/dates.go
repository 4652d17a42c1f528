package store

import (
	"fmt"
	"time"
)

// DateLayout is the YYYY-MM-DD form used for every date parameter.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// dayMatch selects how a timestamp is compared against a calendar date.
type dayMatch int

const (
	// matchPrefix compares the UTC ISO date of the timestamp with the date
	// string.
	matchPrefix dayMatch = iota
	// matchInterval checks the timestamp against [startOfDay, startOfDay+1d)
	// in the store location.
	matchInterval
)

// onDay returns a predicate reporting whether a timestamp falls on date.
// An unparseable date matches nothing.
func (s *Store) onDay(date string, mode dayMatch) func(time.Time) bool {
	switch mode {
	case matchInterval:
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return func(time.Time) bool { return false }
		}
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
		end := start.AddDate(0, 0, 1)
		return func(t time.Time) bool {
			return !t.Before(start) && t.Before(end)
		}
	default:
		return func(t time.Time) bool {
			return isoDate(t) == date
		}
	}
}

// inRange reports whether the UTC ISO date of t lies in [start, end] by
// string comparison.
func inRange(t time.Time, start, end string) bool {
	d := isoDate(t)
	return d >= start && d <= end
}

func isoDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
