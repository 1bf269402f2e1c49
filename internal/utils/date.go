package utils

import (
	"errors"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ErrBadDate is returned when a date string is not YYYY-MM-DD.
var ErrBadDate = errors.New("invalid date, expected YYYY-MM-DD")

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.Time.
// An empty string yields the zero time with no error, matching the
// engine's treatment of missing dates as non-blocking.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD; the zero time renders as
// the empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
