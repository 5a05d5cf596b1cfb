package dateutil

import (
	"fmt"
	"time"
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfYear returns January 1 (00:00:00) of the given year in loc
func StartOfYear(year int, loc *time.Location) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}

// EndOfYear returns December 31 (00:00:00) of the given year in loc
func EndOfYear(year int, loc *time.Location) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02.01.2006",
		"01/02/2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, time.Local); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(time.Now())
}
