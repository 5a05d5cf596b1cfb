package yeartracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/username/year-dots/internal/calendar"
	"github.com/username/year-dots/internal/config"
	"github.com/username/year-dots/internal/daystate"
	"github.com/username/year-dots/internal/dotfont"
	"github.com/username/year-dots/internal/yearview"
	"github.com/username/year-dots/pkg/dateutil"
	"go.uber.org/zap"
)

// ErrOutsideYear is returned for dates that do not belong to the tracked year
var ErrOutsideYear = errors.New("date is outside the tracked year")

// Manager ties the tracked year, today and the day-state store together
type Manager struct {
	config *config.Config
	store  *daystate.Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	today time.Time
}

// Status is a point-in-time view of the tracked year
type Status struct {
	yearview.Summary
	Today       calendar.DateKey `json:"today"`
	TodayMarked bool             `json:"today_marked"`
	InYear      bool             `json:"in_year"`
}

// NewManager creates a new year manager; today is captured here
func NewManager(cfg *config.Config, store *daystate.Store, logger *zap.Logger) *Manager {
	return &Manager{
		config: cfg,
		store:  store,
		logger: logger,
		now:    time.Now,
		today:  dateutil.StartOfDay(time.Now()),
	}
}

// Year returns the tracked year
func (m *Manager) Year() int {
	return m.config.Year
}

// Store returns the underlying day-state store
func (m *Manager) Store() *daystate.Store {
	return m.store
}

// Init loads persisted state and captures today
func (m *Manager) Init(ctx context.Context) error {
	m.RefreshToday(m.now())

	if err := m.store.Load(ctx); err != nil {
		return fmt.Errorf("failed to initialize year %d: %w", m.config.Year, err)
	}

	m.logger.Info("Year tracker initialized",
		zap.Int("year", m.config.Year),
		zap.Int("days", calendar.DaysInYear(m.config.Year)),
		zap.Int("marked", m.store.Count()))

	return nil
}

// Today returns the captured current day
func (m *Manager) Today() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.today
}

// RefreshToday moves today to the day of now and reports whether it changed
func (m *Manager) RefreshToday(now time.Time) bool {
	day := dateutil.StartOfDay(now)

	m.mu.Lock()
	changed := !dateutil.IsSameDay(m.today, day)
	m.today = day
	m.mu.Unlock()

	if changed {
		m.logger.Info("Day rolled over", zap.String("today", calendar.KeyOf(day).String()))
	}
	return changed
}

// TodayIndex returns the day index of today in the tracked year, or -1
func (m *Manager) TodayIndex() int {
	return calendar.TodayIndex(m.config.Year, m.Today())
}

// Days builds the grid of the tracked year
func (m *Manager) Days() ([]yearview.Day, error) {
	return yearview.BuildDays(m.config.Year, m.Today(), m.store)
}

// Counter renders the marked count for a viewport width in pixels
func (m *Manager) Counter(width int) dotfont.Grid {
	return yearview.BuildCounter(m.store.Count(), width, m.config.Counter.FixedColumns)
}

// ToggleDay flips the day at a 1-based index of the tracked year
func (m *Manager) ToggleDay(ctx context.Context, dayIndex int) (bool, error) {
	key, err := calendar.KeyForDay(m.config.Year, dayIndex)
	if err != nil {
		return false, err
	}
	return m.store.Toggle(ctx, key)
}

// ToggleKey flips a date of the tracked year
func (m *Manager) ToggleKey(ctx context.Context, key calendar.DateKey) (bool, error) {
	if err := m.checkKey(key); err != nil {
		return false, err
	}
	return m.store.Toggle(ctx, key)
}

// ToggleToday flips today; fails with ErrOutsideYear when today is in another year
func (m *Manager) ToggleToday(ctx context.Context) (bool, error) {
	idx := m.TodayIndex()
	if idx < 0 {
		return false, fmt.Errorf("%w: today is %s", ErrOutsideYear, calendar.KeyOf(m.Today()))
	}
	return m.ToggleDay(ctx, idx)
}

// MarkToday marks today without unmarking it when already set
func (m *Manager) MarkToday(ctx context.Context) error {
	idx := m.TodayIndex()
	if idx < 0 {
		return fmt.Errorf("%w: today is %s", ErrOutsideYear, calendar.KeyOf(m.Today()))
	}
	return m.store.SetMarked(ctx, calendar.KeyOf(m.Today()), true)
}

// TodayMarked reports whether today is marked
func (m *Manager) TodayMarked() bool {
	return m.store.IsMarked(calendar.KeyOf(m.Today()))
}

// Record returns the stored record of key
func (m *Manager) Record(key calendar.DateKey) (daystate.DayRecord, bool) {
	return m.store.Get(key)
}

// SaveJournal replaces the journal entry of a date in the tracked year.
// The selfie reference is kept from the stored entry; only AttachSelfie sets it.
func (m *Manager) SaveJournal(ctx context.Context, key calendar.DateKey, entry daystate.Journal) error {
	if err := m.checkKey(key); err != nil {
		return err
	}

	entry.Selfie = ""
	if rec, _ := m.store.Get(key); rec.Journal != nil {
		entry.Selfie = rec.Journal.Selfie
	}
	return m.store.Upsert(ctx, key, entry)
}

// DeleteJournal removes the journal entry of key and its selfie blob
func (m *Manager) DeleteJournal(ctx context.Context, key calendar.DateKey) error {
	rec, _ := m.store.Get(key)
	if err := m.store.DeleteJournal(ctx, key); err != nil {
		return err
	}
	if rec.Journal != nil && rec.Journal.Selfie != "" {
		m.removeBlob(rec.Journal.Selfie)
	}
	return nil
}

// AttachSelfie copies the image at src into the blob directory under a fresh
// name and references it from the journal entry of key. Returns the blob name.
func (m *Manager) AttachSelfie(ctx context.Context, key calendar.DateKey, src string) (string, error) {
	if err := m.checkKey(key); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(src))
	if err := m.copyBlob(src, name); err != nil {
		return "", err
	}

	var entry daystate.Journal
	rec, _ := m.store.Get(key)
	if rec.Journal != nil {
		entry = *rec.Journal
	}
	previous := entry.Selfie
	entry.Selfie = name

	if err := m.store.Upsert(ctx, key, entry); err != nil {
		return name, err
	}
	if previous != "" {
		m.removeBlob(previous)
	}

	m.logger.Info("Selfie attached",
		zap.String("date", key.String()),
		zap.String("blob", name))

	return name, nil
}

// BlobPath returns the file path of a selfie blob
func (m *Manager) BlobPath(name string) string {
	return filepath.Join(m.config.Storage.BlobDir, filepath.Base(name))
}

// Status summarizes the tracked year as of today
func (m *Manager) Status() (Status, error) {
	days, err := m.Days()
	if err != nil {
		return Status{}, err
	}

	today := m.Today()
	return Status{
		Summary:     yearview.Summarize(m.config.Year, days),
		Today:       calendar.KeyOf(today),
		TodayMarked: m.TodayMarked(),
		InYear:      m.TodayIndex() > 0,
	}, nil
}

// Close releases the store backend
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) checkKey(key calendar.DateKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", calendar.ErrInvalidDateKey, string(key))
	}
	if key.Year() != m.config.Year {
		return fmt.Errorf("%w: %s not in %d", ErrOutsideYear, key, m.config.Year)
	}
	return nil
}

func (m *Manager) copyBlob(src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open selfie: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(m.config.Storage.BlobDir, 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	out, err := os.Create(m.BlobPath(name))
	if err != nil {
		return fmt.Errorf("failed to create blob: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy selfie: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

func (m *Manager) removeBlob(name string) {
	if err := os.Remove(m.BlobPath(name)); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("Failed to remove selfie blob", zap.String("blob", name), zap.Error(err))
	}
}
