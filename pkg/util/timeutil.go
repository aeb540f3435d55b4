package util

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by lab entries and forecast days.
const DateLayout = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the UTC instant.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if ts, err := time.Parse(DateLayout, trimmed); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// MonthsBetween counts calendar months from then to now, ignoring the day of month.
func MonthsBetween(then, now time.Time) int {
	return (now.Year()-then.Year())*12 + int(now.Month()) - int(then.Month())
}
