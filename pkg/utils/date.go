package utils

import "time"

// DateLayout is the canonical calendar-date format used for score rows.
const DateLayout = "2006-01-02"

// TruncateToDate drops the time-of-day portion of t, keeping its location.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayBounds returns the inclusive start and exclusive end of the calendar
// day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := TruncateToDate(t)
	return start, start.Add(24 * time.Hour)
}

// ParseDate parses a YYYY-MM-DD string in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
