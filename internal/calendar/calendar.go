package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateKeyLayout is the canonical zero-padded layout of a DateKey
const DateKeyLayout = "2006-01-02"

// MaxYear is the last year whose keys fit the four-digit layout
const MaxYear = 9999

var (
	// ErrDayIndexOutOfRange is returned when a day index falls outside [1, DaysInYear]
	ErrDayIndexOutOfRange = errors.New("day index out of range")

	// ErrInvalidYear is returned for years outside [1, MaxYear]
	ErrInvalidYear = errors.New("invalid year")

	// ErrInvalidDateKey is returned when a string is not a canonical YYYY-MM-DD date
	ErrInvalidDateKey = errors.New("invalid date key")
)

// DateKey is the canonical YYYY-MM-DD identity of a calendar date.
// Keys sort lexicographically in calendar order; years are limited to
// [1, MaxYear] so the year part stays four digits wide.
type DateKey string

// IsLeapYear reports whether year is a Gregorian leap year
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInYear returns 366 for leap years and 365 otherwise
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DayIndexToDate maps a 1-based day index to its date within year (local time, midnight).
// January 1 is day 1. Month carry is left to time.Date normalization, so day 60 is
// February 29 only in leap years.
func DayIndexToDate(year, dayIndex int) (time.Time, error) {
	if year < 1 || year > MaxYear {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if dayIndex < 1 || dayIndex > DaysInYear(year) {
		return time.Time{}, fmt.Errorf("%w: %d not in [1, %d] for %d",
			ErrDayIndexOutOfRange, dayIndex, DaysInYear(year), year)
	}

	return time.Date(year, time.January, dayIndex, 0, 0, 0, 0, time.Local), nil
}

// DayOfYear returns the 1-based offset of date within its own calendar year
func DayOfYear(date time.Time) int {
	return date.YearDay()
}

// TodayIndex returns the day index of today inside year, or -1 when today
// belongs to another year.
func TodayIndex(year int, today time.Time) int {
	if today.Year() != year {
		return -1
	}
	return DayOfYear(today)
}

// KeyOf formats date as its DateKey
func KeyOf(date time.Time) DateKey {
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", date.Year(), int(date.Month()), date.Day()))
}

// KeyForDay returns the DateKey of the given day index of year
func KeyForDay(year, dayIndex int) (DateKey, error) {
	date, err := DayIndexToDate(year, dayIndex)
	if err != nil {
		return "", err
	}
	return KeyOf(date), nil
}

// ParseDateKey parses a canonical YYYY-MM-DD string.
// Non-padded or impossible dates (2026-02-29) are rejected.
func ParseDateKey(s string) (DateKey, time.Time, error) {
	date, err := time.ParseInLocation(DateKeyLayout, s, time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}

	key := KeyOf(date)
	if string(key) != s {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}

	return key, date, nil
}

// Time returns the date the key identifies (local midnight).
// The zero time is returned for malformed keys.
func (k DateKey) Time() time.Time {
	_, date, err := ParseDateKey(string(k))
	if err != nil {
		return time.Time{}
	}
	return date
}

// Year returns the key's year, or 0 for malformed keys
func (k DateKey) Year() int {
	t := k.Time()
	if t.IsZero() {
		return 0
	}
	return t.Year()
}

// Valid reports whether k is a canonical date key
func (k DateKey) Valid() bool {
	_, _, err := ParseDateKey(string(k))
	return err == nil
}

func (k DateKey) String() string {
	return string(k)
}
