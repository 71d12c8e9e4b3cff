// utils/week.go
package utils

import "time"

// DateLayout is the calendar-date format used across requests and records.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// WeekWindow returns the inclusive 7-day window [start, start+6d] used to
// bucket route records for weekly summaries.
func WeekWindow(start time.Time) (time.Time, time.Time) {
	return start, start.AddDate(0, 0, 6)
}

// InWindow reports whether a date falls inside the inclusive window.
func InWindow(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}
