package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/year-dots/internal/calendar"
	"github.com/username/year-dots/internal/daystate"
	"github.com/username/year-dots/internal/dotfont"
	"github.com/username/year-dots/internal/export"
	"github.com/username/year-dots/internal/yearview"
	"go.uber.org/zap"
)

// DaysResponse is the body of GET /api/days
type DaysResponse struct {
	Year    int              `json:"year"`
	Days    []yearview.Day   `json:"days"`
	Summary yearview.Summary `json:"summary"`
}

// DayResponse is the body of the single-day endpoints
type DayResponse struct {
	Key     calendar.DateKey  `json:"key"`
	Label   string            `json:"label"`
	Marked  bool              `json:"marked"`
	Journal *daystate.Journal `json:"journal,omitempty"`
}

// CounterResponse is the body of GET /api/counter
type CounterResponse struct {
	Count int       `json:"count"`
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Bits  [][]uint8 `json:"bits"`
}

// HandleListDays returns every day of the tracked year.
func (s *Server) HandleListDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.manager.Days()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	jsonOK(w, DaysResponse{
		Year:    s.manager.Year(),
		Days:    days,
		Summary: yearview.Summarize(s.manager.Year(), days),
	})
}

// HandleGetDay returns the record of one date.
func (s *Server) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	key, ok := pathKey(w, r)
	if !ok {
		return
	}
	jsonOK(w, s.dayResponse(key))
}

// HandleToggleDay flips the marked flag of a date.
func (s *Server) HandleToggleDay(w http.ResponseWriter, r *http.Request) {
	key, ok := pathKey(w, r)
	if !ok {
		return
	}

	if _, err := s.manager.ToggleKey(r.Context(), key); err != nil {
		s.logger.Error("Toggle failed", zap.String("date", key.String()), zap.Error(err))
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	jsonOK(w, s.dayResponse(key))
}

// HandlePutJournal replaces the journal entry of a date.
func (s *Server) HandlePutJournal(w http.ResponseWriter, r *http.Request) {
	key, ok := pathKey(w, r)
	if !ok {
		return
	}

	var entry daystate.Journal
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.manager.SaveJournal(r.Context(), key, entry); err != nil {
		s.logger.Error("Journal save failed", zap.String("date", key.String()), zap.Error(err))
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	jsonOK(w, s.dayResponse(key))
}

// HandleDeleteJournal removes the journal entry of a date.
func (s *Server) HandleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	key, ok := pathKey(w, r)
	if !ok {
		return
	}

	if err := s.manager.DeleteJournal(r.Context(), key); err != nil {
		s.logger.Error("Journal delete failed", zap.String("date", key.String()), zap.Error(err))
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	jsonOK(w, s.dayResponse(key))
}

// HandleCounter renders the marked count for a viewport width in pixels.
func (s *Server) HandleCounter(w http.ResponseWriter, r *http.Request) {
	width := 0
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "width must be a non-negative integer", http.StatusBadRequest)
			return
		}
		width = n
	}

	grid := s.manager.Counter(width)
	jsonOK(w, CounterResponse{
		Count: s.manager.Store().Count(),
		Rows:  grid.Rows,
		Cols:  grid.Cols,
		Bits:  grid.Bits(),
	})
}

// HandleStatus returns the year summary as of today.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.manager.Status()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonOK(w, status)
}

// HandleExportPNG renders the year poster.
func (s *Server) HandleExportPNG(w http.ResponseWriter, r *http.Request) {
	days, err := s.manager.Days()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	opts := export.PNGOptions{
		Caption: fmt.Sprintf("%d: %d dots", s.manager.Year(), s.manager.Store().Count()),
	}
	if r.URL.Query().Get("theme") == "light" {
		opts.Palette = export.LightPalette
	}

	w.Header().Set("Content-Type", "image/png")
	counter := dotfont.Render(s.manager.Store().Count(), dotfont.FixedColumns)
	if err := export.PNG(w, days, counter, opts); err != nil {
		s.logger.Error("Poster export failed", zap.Error(err))
	}
}

// HandleExportICS writes marked days as an iCalendar feed.
func (s *Server) HandleExportICS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="year-dots-%d.ics"`, s.manager.Year()))

	if err := export.ICS(w, s.manager.Year(), s.manager.Store().Snapshot(), s.now()); err != nil {
		s.logger.Error("Calendar export failed", zap.Error(err))
	}
}

func (s *Server) dayResponse(key calendar.DateKey) DayResponse {
	rec, _ := s.manager.Record(key)
	return DayResponse{
		Key:     key,
		Label:   yearview.FormatDay(key.Time()),
		Marked:  rec.Marked,
		Journal: rec.Journal,
	}
}

func pathKey(w http.ResponseWriter, r *http.Request) (calendar.DateKey, bool) {
	key, _, err := calendar.ParseDateKey(r.PathValue("key"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return key, true
}
