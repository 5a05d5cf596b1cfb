package yearview

import (
	"fmt"
	"time"

	"github.com/username/year-dots/internal/calendar"
	"github.com/username/year-dots/internal/daystate"
	"github.com/username/year-dots/internal/dotfont"
)

// Phase places a day relative to today
type Phase int

const (
	Past Phase = iota + 1
	Today
	Future
)

func (p Phase) String() string {
	switch p {
	case Past:
		return "past"
	case Today:
		return "today"
	case Future:
		return "future"
	default:
		return "unknown"
	}
}

// MarshalText lets phases serialize as their names
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "past":
		*p = Past
	case "today":
		*p = Today
	case "future":
		*p = Future
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// Classify decides the phase of dayIndex in year. todayIndex is -1 when today
// lies in another year; then the whole year is past if todayYear > year and
// future otherwise.
func Classify(dayIndex, todayIndex, todayYear, year int) Phase {
	switch {
	case dayIndex == todayIndex:
		return Today
	case dayIndex < todayIndex || todayYear > year:
		return Past
	default:
		return Future
	}
}

// RecordLookup resolves the stored record of a date
type RecordLookup interface {
	Get(key calendar.DateKey) (daystate.DayRecord, bool)
}

// Day is the view model of one dot
type Day struct {
	Index      int              `json:"index"`
	Date       time.Time        `json:"-"`
	Key        calendar.DateKey `json:"key"`
	Phase      Phase            `json:"phase"`
	Marked     bool             `json:"marked"`
	HasJournal bool             `json:"has_journal"`
	Mood       daystate.Mood    `json:"mood,omitempty"`
}

// HasData reports whether the dot carries anything
func (d Day) HasData() bool {
	return d.Marked || d.HasJournal
}

// BuildDays returns one Day per day of year, in order
func BuildDays(year int, today time.Time, lookup RecordLookup) ([]Day, error) {
	total := calendar.DaysInYear(year)
	todayIndex := calendar.TodayIndex(year, today)

	days := make([]Day, 0, total)
	for i := 1; i <= total; i++ {
		date, err := calendar.DayIndexToDate(year, i)
		if err != nil {
			return nil, fmt.Errorf("failed to map day %d: %w", i, err)
		}
		key := calendar.KeyOf(date)
		rec, _ := lookup.Get(key)

		day := Day{
			Index:  i,
			Date:   date,
			Key:    key,
			Phase:  Classify(i, todayIndex, today.Year(), year),
			Marked: rec.Marked,
		}
		if rec.Journal != nil {
			day.HasJournal = true
			day.Mood = rec.Journal.Mood
		}
		days = append(days, day)
	}

	return days, nil
}

// CounterColumns resolves the counter width for a viewport width
func CounterColumns(width int, fixed bool) int {
	if fixed {
		return dotfont.FixedColumns
	}
	return dotfont.ColumnsForWidth(width)
}

// BuildCounter renders count as a dot-matrix grid for a viewport width
func BuildCounter(count, width int, fixed bool) dotfont.Grid {
	return dotfont.Render(count, CounterColumns(width, fixed))
}

// Summary aggregates a built year
type Summary struct {
	Year       int     `json:"year"`
	TotalDays  int     `json:"total_days"`
	Marked     int     `json:"marked"`
	Journaled  int     `json:"journaled"`
	PastDays   int     `json:"past_days"`
	Remaining  int     `json:"remaining_days"`
	TodayIndex int     `json:"today_index"`
	ElapsedPct float64 `json:"elapsed_percent"`
}

// Summarize counts phases and data over days
func Summarize(year int, days []Day) Summary {
	s := Summary{Year: year, TotalDays: len(days), TodayIndex: -1}
	for _, d := range days {
		switch d.Phase {
		case Past:
			s.PastDays++
		case Today:
			s.TodayIndex = d.Index
		case Future:
			s.Remaining++
		}
		if d.Marked {
			s.Marked++
		}
		if d.HasJournal {
			s.Journaled++
		}
	}

	if s.TotalDays > 0 {
		elapsed := s.PastDays
		if s.TodayIndex > 0 {
			elapsed++
		}
		s.ElapsedPct = float64(elapsed) * 100 / float64(s.TotalDays)
	}

	return s
}

// FormatDay renders the tooltip text of a date, e.g. "Monday, January 5"
func FormatDay(date time.Time) string {
	return date.Format("Monday, January 2")
}
