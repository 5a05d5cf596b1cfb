package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2000, true},
		{1900, false},
		{2024, true},
		{2023, false},
		{2026, false},
		{2100, false},
		{2400, true},
		{4, true},
		{1, false},
	}

	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestIsLeapYearMatchesRule(t *testing.T) {
	for y := 1; y <= 3000; y++ {
		want := (y%4 == 0 && y%100 != 0) || y%400 == 0
		if got := IsLeapYear(y); got != want {
			t.Fatalf("IsLeapYear(%d) = %v, want %v", y, got, want)
		}
		days := DaysInYear(y)
		if (days == 366) != want {
			t.Fatalf("DaysInYear(%d) = %d, leap = %v", y, days, want)
		}
	}
}

func TestDayIndexToDate(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		dayIndex  int
		wantMonth time.Month
		wantDay   int
	}{
		{"First day", 2026, 1, time.January, 1},
		{"Month rollover", 2026, 32, time.February, 1},
		{"Day 60 non-leap is March 1", 2026, 60, time.March, 1},
		{"Day 60 leap is Feb 29", 2024, 60, time.February, 29},
		{"Day 61 leap is March 1", 2024, 61, time.March, 1},
		{"Last day non-leap", 2026, 365, time.December, 31},
		{"Last day leap", 2024, 366, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := DayIndexToDate(tt.year, tt.dayIndex)
			if err != nil {
				t.Fatalf("DayIndexToDate(%d, %d) error = %v", tt.year, tt.dayIndex, err)
			}

			if date.Year() != tt.year || date.Month() != tt.wantMonth || date.Day() != tt.wantDay {
				t.Errorf("DayIndexToDate(%d, %d) = %s, want %d-%02d-%02d",
					tt.year, tt.dayIndex, date.Format(DateKeyLayout), tt.year, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestDayIndexToDate_OutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		dayIndex int
		wantErr  error
	}{
		{"Zero", 2026, 0, ErrDayIndexOutOfRange},
		{"Negative", 2026, -5, ErrDayIndexOutOfRange},
		{"366 in non-leap year", 2026, 366, ErrDayIndexOutOfRange},
		{"367 in leap year", 2024, 367, ErrDayIndexOutOfRange},
		{"Year zero", 0, 1, ErrInvalidYear},
		{"Five digit year", MaxYear + 1, 1, ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DayIndexToDate(tt.year, tt.dayIndex)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DayIndexToDate(%d, %d) error = %v, want %v", tt.year, tt.dayIndex, err, tt.wantErr)
			}
		})
	}
}

func TestKeysUniqueAndIncreasing(t *testing.T) {
	for _, year := range []int{2023, 2024, 2026, 1900, 2000} {
		seen := make(map[DateKey]bool)
		var prev DateKey

		for day := 1; day <= DaysInYear(year); day++ {
			key, err := KeyForDay(year, day)
			if err != nil {
				t.Fatalf("KeyForDay(%d, %d) error = %v", year, day, err)
			}
			if seen[key] {
				t.Fatalf("KeyForDay(%d, %d) = %s collides", year, day, key)
			}
			seen[key] = true

			if day > 1 && key <= prev {
				t.Fatalf("KeyForDay(%d, %d) = %s not greater than %s", year, day, key, prev)
			}
			prev = key
		}
	}
}

func TestDayOfYearInverse(t *testing.T) {
	for _, year := range []int{2024, 2026} {
		for day := 1; day <= DaysInYear(year); day++ {
			date, err := DayIndexToDate(year, day)
			if err != nil {
				t.Fatalf("DayIndexToDate(%d, %d) error = %v", year, day, err)
			}
			if got := DayOfYear(date); got != day {
				t.Fatalf("DayOfYear(%s) = %d, want %d", date.Format(DateKeyLayout), got, day)
			}
		}
	}
}

func TestTodayIndex(t *testing.T) {
	today := time.Date(2026, 3, 1, 15, 0, 0, 0, time.Local)

	if got := TodayIndex(2026, today); got != 60 {
		t.Errorf("TodayIndex(2026, %v) = %d, want 60", today, got)
	}
	if got := TodayIndex(2025, today); got != -1 {
		t.Errorf("TodayIndex(2025, %v) = %d, want -1", today, got)
	}
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want DateKey
	}{
		{time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "2026-01-05"},
		{time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC), "2026-12-31"},
		{time.Date(987, 7, 4, 0, 0, 0, 0, time.UTC), "0987-07-04"},
	}

	for _, tt := range tests {
		if got := KeyOf(tt.date); got != tt.want {
			t.Errorf("KeyOf(%v) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2026-01-05", false},
		{"2024-02-29", false},
		{"2026-02-29", true},
		{"2026-2-1", true},
		{"2026-13-01", true},
		{"20260105", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, date, err := ParseDateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidDateKey) {
					t.Errorf("ParseDateKey(%q) error = %v, want ErrInvalidDateKey", tt.input, err)
				}
				return
			}
			if string(key) != tt.input || KeyOf(date) != key {
				t.Errorf("ParseDateKey(%q) = %s / %v", tt.input, key, date)
			}
		})
	}
}

func TestDateKeyHelpers(t *testing.T) {
	key := DateKey("2024-02-29")
	if !key.Valid() {
		t.Fatalf("%s should be valid", key)
	}
	if key.Year() != 2024 {
		t.Errorf("Year() = %d, want 2024", key.Year())
	}
	if DateKey("bogus").Year() != 0 {
		t.Errorf("Year() of malformed key should be 0")
	}
	if !DateKey("bogus").Time().IsZero() {
		t.Errorf("Time() of malformed key should be zero")
	}
}
