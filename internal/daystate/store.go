package daystate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/username/year-dots/internal/calendar"
	"go.uber.org/zap"
)

// ErrCorrupt is returned by backends whose persisted data cannot be decoded
var ErrCorrupt = errors.New("persisted state is corrupt")

// Backend persists the whole DayState aggregate under one storage key
type Backend interface {
	// Load returns ErrNoState when nothing was saved yet and ErrCorrupt when the
	// stored data cannot be decoded
	Load(ctx context.Context) (*DayState, error)

	// Save replaces the persisted aggregate
	Save(ctx context.Context, state *DayState) error

	Close() error
}

// Store is the in-memory source of truth for day state, written through to a Backend
type Store struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.RWMutex
	state *DayState

	saveMu sync.Mutex
}

// NewStore creates a store with an empty state; call Load to read persisted data
func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		state:   NewDayState(),
	}
}

// Load replaces the in-memory state with the persisted one.
// Missing or corrupt data yields an empty state.
func (s *Store) Load(ctx context.Context) error {
	state, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		s.logger.Info("No saved day state, starting empty")
		state = NewDayState()
	case errors.Is(err, ErrCorrupt):
		s.logger.Warn("Saved day state is unreadable, starting empty", zap.Error(err))
		state = NewDayState()
	case err != nil:
		return fmt.Errorf("failed to load day state: %w", err)
	}

	if dropped := state.normalize(); dropped > 0 {
		s.logger.Warn("Dropped malformed date keys from saved state", zap.Int("dropped", dropped))
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.logger.Info("Day state loaded",
		zap.Int("marked", len(state.Marked)),
		zap.Int("journal_entries", len(state.Journal)))

	return nil
}

// Save writes the full aggregate to the backend. Concurrent saves are
// serialized and each one writes the state current at the time it runs.
func (s *Store) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snapshot := s.Snapshot()
	if err := s.backend.Save(ctx, snapshot); err != nil {
		s.logger.Error("Failed to persist day state", zap.Error(err))
		return fmt.Errorf("failed to save day state: %w", err)
	}

	s.logger.Debug("Day state saved", zap.Int("marked", len(snapshot.Marked)))
	return nil
}

// Toggle flips the marked flag of key and persists the result.
// The flip stays in memory even when persisting fails.
func (s *Store) Toggle(ctx context.Context, key calendar.DateKey) (bool, error) {
	if !key.Valid() {
		return false, fmt.Errorf("%w: %q", calendar.ErrInvalidDateKey, string(key))
	}

	s.mu.Lock()
	_, marked := s.state.Marked[key]
	if marked {
		delete(s.state.Marked, key)
	} else {
		s.state.Marked[key] = struct{}{}
	}
	s.mu.Unlock()

	s.logger.Info("Day toggled", zap.String("date", key.String()), zap.Bool("marked", !marked))

	return !marked, s.Save(ctx)
}

// SetMarked forces the marked flag of key and persists when it changed
func (s *Store) SetMarked(ctx context.Context, key calendar.DateKey, marked bool) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", calendar.ErrInvalidDateKey, string(key))
	}

	s.mu.Lock()
	_, was := s.state.Marked[key]
	if was == marked {
		s.mu.Unlock()
		return nil
	}
	if marked {
		s.state.Marked[key] = struct{}{}
	} else {
		delete(s.state.Marked, key)
	}
	s.mu.Unlock()

	return s.Save(ctx)
}

// Upsert replaces the journal entry of key wholesale and persists it
func (s *Store) Upsert(ctx context.Context, key calendar.DateKey, entry Journal) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", calendar.ErrInvalidDateKey, string(key))
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	entry = entry.clone()
	entry.UpdatedAt = s.now().UTC().Truncate(time.Second)

	s.mu.Lock()
	s.state.Journal[key] = entry
	s.mu.Unlock()

	s.logger.Info("Journal entry saved", zap.String("date", key.String()), zap.String("mood", string(entry.Mood)))

	return s.Save(ctx)
}

// DeleteJournal removes the journal entry of key, if any
func (s *Store) DeleteJournal(ctx context.Context, key calendar.DateKey) error {
	s.mu.Lock()
	_, ok := s.state.Journal[key]
	delete(s.state.Journal, key)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.Save(ctx)
}

// Get returns the record of key and whether anything is stored for it.
// A missing key yields the zero record.
func (s *Store) Get(key calendar.DateKey) (DayRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Record(key)
}

// IsMarked reports whether key is marked
func (s *Store) IsMarked(key calendar.DateKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.Marked[key]
	return ok
}

// Count returns the number of marked days
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Count()
}

// CountIn returns the number of marked days within year
func (s *Store) CountIn(year int) int {
	prefix := fmt.Sprintf("%04d-", year)

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.state.Marked {
		if strings.HasPrefix(string(k), prefix) {
			n++
		}
	}
	return n
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() *DayState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
