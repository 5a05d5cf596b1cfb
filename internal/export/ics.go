package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/username/year-dots/internal/calendar"
	"github.com/username/year-dots/internal/daystate"
)

const productID = "-//year-dots//year-dots//EN"

// ICS writes one all-day event per marked day of year
func ICS(w io.Writer, year int, state *daystate.DayState, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(fmt.Sprintf("Year dots %d", year))

	prefix := fmt.Sprintf("%04d-", year)
	for _, key := range state.MarkedKeys() {
		if !strings.HasPrefix(string(key), prefix) {
			continue
		}
		date := key.Time()
		if date.IsZero() {
			continue
		}

		event := cal.AddEvent(string(key) + "@year-dots")
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(date)
		event.SetAllDayEndAt(date.AddDate(0, 0, 1))

		rec, _ := state.Record(key)
		event.SetSummary(eventSummary(rec))
		if rec.Journal != nil && rec.Journal.Notes != "" {
			event.SetDescription(rec.Journal.Notes)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func eventSummary(rec daystate.DayRecord) string {
	summary := "Marked day"
	if rec.Journal == nil {
		return summary
	}
	if emoji := rec.Journal.Mood.Emoji(); emoji != "" {
		summary = emoji + " " + string(rec.Journal.Mood)
	}
	if rec.Journal.Highlights != "" {
		summary += ": " + rec.Journal.Highlights
	}
	return summary
}

// EventKeys returns the date keys of the all-day events in an ICS stream
func EventKeys(r io.Reader) ([]calendar.DateKey, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	var keys []calendar.DateKey
	for _, event := range cal.Events() {
		start, err := event.GetAllDayStartAt()
		if err != nil {
			return nil, fmt.Errorf("failed to read event start: %w", err)
		}
		keys = append(keys, calendar.KeyOf(start))
	}
	return keys, nil
}
