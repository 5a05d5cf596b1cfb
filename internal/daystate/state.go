package daystate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/username/year-dots/internal/calendar"
)

var (
	// ErrNoState is returned by backends when nothing has been persisted yet
	ErrNoState = errors.New("no persisted state")

	// ErrInvalidJournal is returned when a journal entry fails validation
	ErrInvalidJournal = errors.New("invalid journal entry")
)

// Mood is the small enumerated mood scale of a journal entry
type Mood string

const (
	MoodNone  Mood = ""
	MoodAwful Mood = "awful"
	MoodBad   Mood = "bad"
	MoodOkay  Mood = "okay"
	MoodGood  Mood = "good"
	MoodGreat Mood = "great"
)

// Moods lists the selectable moods, worst first
var Moods = []Mood{MoodAwful, MoodBad, MoodOkay, MoodGood, MoodGreat}

var moodEmojis = map[Mood]string{
	MoodAwful: "😫",
	MoodBad:   "😕",
	MoodOkay:  "😐",
	MoodGood:  "🙂",
	MoodGreat: "😄",
}

// Valid reports whether m is MoodNone or one of Moods
func (m Mood) Valid() bool {
	if m == MoodNone {
		return true
	}
	_, ok := moodEmojis[m]
	return ok
}

// Emoji returns the mood's emoji, or an empty string for MoodNone
func (m Mood) Emoji() string {
	return moodEmojis[m]
}

// ParseMood parses a mood name; the empty string is MoodNone
func ParseMood(s string) (Mood, error) {
	m := Mood(s)
	if !m.Valid() {
		return MoodNone, fmt.Errorf("%w: unknown mood %q", ErrInvalidJournal, s)
	}
	return m, nil
}

// Journal is the rich per-day annotation
type Journal struct {
	Notes      string    `json:"notes,omitempty"`
	Mood       Mood      `json:"mood,omitempty"`
	Energy     int       `json:"energy,omitempty"` // 1-10, 0 = unset
	Gratitude  []string  `json:"gratitude,omitempty"`
	Highlights string    `json:"highlights,omitempty"`
	SleepHours float64   `json:"sleep_hours,omitempty"`
	Steps      int       `json:"steps,omitempty"`
	Selfie     string    `json:"selfie,omitempty"` // blob reference
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks field ranges
func (j Journal) Validate() error {
	if !j.Mood.Valid() {
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidJournal, j.Mood)
	}
	if j.Energy < 0 || j.Energy > 10 {
		return fmt.Errorf("%w: energy must be between 0 and 10, got %d", ErrInvalidJournal, j.Energy)
	}
	if j.SleepHours < 0 || j.SleepHours > 24 {
		return fmt.Errorf("%w: sleep hours must be between 0 and 24, got %v", ErrInvalidJournal, j.SleepHours)
	}
	if j.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative", ErrInvalidJournal)
	}
	return nil
}

// IsEmpty reports whether the entry carries no user data
func (j Journal) IsEmpty() bool {
	return j.Notes == "" && j.Mood == MoodNone && j.Energy == 0 && len(j.Gratitude) == 0 &&
		j.Highlights == "" && j.SleepHours == 0 && j.Steps == 0 && j.Selfie == ""
}

func (j Journal) clone() Journal {
	if j.Gratitude != nil {
		j.Gratitude = append([]string(nil), j.Gratitude...)
	}
	return j
}

func (j Journal) equal(o Journal) bool {
	if len(j.Gratitude) != len(o.Gratitude) {
		return false
	}
	for i := range j.Gratitude {
		if j.Gratitude[i] != o.Gratitude[i] {
			return false
		}
	}
	return j.Notes == o.Notes && j.Mood == o.Mood && j.Energy == o.Energy &&
		j.Highlights == o.Highlights && j.SleepHours == o.SleepHours && j.Steps == o.Steps &&
		j.Selfie == o.Selfie && j.UpdatedAt.Equal(o.UpdatedAt)
}

// DayRecord is everything known about one date. The zero value is the
// record of a day nobody touched.
type DayRecord struct {
	Marked  bool
	Journal *Journal
}

// HasData reports whether the day is marked or annotated
func (r DayRecord) HasData() bool {
	return r.Marked || r.Journal != nil
}

// DayState is the whole persisted aggregate
type DayState struct {
	Marked  map[calendar.DateKey]struct{}
	Journal map[calendar.DateKey]Journal
}

// NewDayState returns an empty aggregate
func NewDayState() *DayState {
	return &DayState{
		Marked:  make(map[calendar.DateKey]struct{}),
		Journal: make(map[calendar.DateKey]Journal),
	}
}

// Count returns the number of marked days
func (s *DayState) Count() int {
	return len(s.Marked)
}

// MarkedKeys returns the marked keys in calendar order
func (s *DayState) MarkedKeys() []calendar.DateKey {
	keys := make([]calendar.DateKey, 0, len(s.Marked))
	for k := range s.Marked {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// JournalKeys returns the annotated keys in calendar order
func (s *DayState) JournalKeys() []calendar.DateKey {
	keys := make([]calendar.DateKey, 0, len(s.Journal))
	for k := range s.Journal {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Record returns the record for key and whether anything is stored for it
func (s *DayState) Record(key calendar.DateKey) (DayRecord, bool) {
	var rec DayRecord
	_, rec.Marked = s.Marked[key]
	if j, ok := s.Journal[key]; ok {
		j = j.clone()
		rec.Journal = &j
	}
	return rec, rec.HasData()
}

// Clone returns a deep copy
func (s *DayState) Clone() *DayState {
	c := &DayState{
		Marked:  make(map[calendar.DateKey]struct{}, len(s.Marked)),
		Journal: make(map[calendar.DateKey]Journal, len(s.Journal)),
	}
	for k := range s.Marked {
		c.Marked[k] = struct{}{}
	}
	for k, j := range s.Journal {
		c.Journal[k] = j.clone()
	}
	return c
}

// Equal compares two aggregates by content
func (s *DayState) Equal(o *DayState) bool {
	if len(s.Marked) != len(o.Marked) || len(s.Journal) != len(o.Journal) {
		return false
	}
	for k := range s.Marked {
		if _, ok := o.Marked[k]; !ok {
			return false
		}
	}
	for k, j := range s.Journal {
		oj, ok := o.Journal[k]
		if !ok || !j.equal(oj) {
			return false
		}
	}
	return true
}

// normalize drops nil maps and invalid keys left by hand-edited storage
func (s *DayState) normalize() (dropped int) {
	if s.Marked == nil {
		s.Marked = make(map[calendar.DateKey]struct{})
	}
	if s.Journal == nil {
		s.Journal = make(map[calendar.DateKey]Journal)
	}
	for k := range s.Marked {
		if !k.Valid() {
			delete(s.Marked, k)
			dropped++
		}
	}
	for k := range s.Journal {
		if !k.Valid() {
			delete(s.Journal, k)
			dropped++
		}
	}
	return dropped
}
