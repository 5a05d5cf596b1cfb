package daystate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/username/year-dots/internal/calendar"
	"go.uber.org/zap"
)

// memBackend is an in-memory Backend that can be told to fail
type memBackend struct {
	mu      sync.Mutex
	state   *DayState
	saves   int
	failErr error
	loadErr error
}

func (m *memBackend) Load(ctx context.Context) (*DayState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.state == nil {
		return nil, ErrNoState
	}
	return m.state.Clone(), nil
}

func (m *memBackend) Save(ctx context.Context, state *DayState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.state = state.Clone()
	m.saves++
	return nil
}

func (m *memBackend) Close() error { return nil }

func newTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	store := NewStore(backend, zap.NewNop())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store
}

func TestStore_LoadEmptyOnFirstRun(t *testing.T) {
	store := newTestStore(t, &memBackend{})

	if store.Count() != 0 {
		t.Errorf("Count() = %d, want 0", store.Count())
	}
	rec, ok := store.Get("2026-01-01")
	if ok || rec.Marked || rec.Journal != nil {
		t.Errorf("Get() on empty store = %+v, %v", rec, ok)
	}
}

func TestStore_LoadCorruptIsEmpty(t *testing.T) {
	store := newTestStore(t, &memBackend{loadErr: ErrCorrupt})

	if store.Count() != 0 {
		t.Errorf("Count() = %d, want 0", store.Count())
	}
}

func TestStore_LoadIOErrorSurfaces(t *testing.T) {
	store := NewStore(&memBackend{loadErr: errors.New("permission denied")}, zap.NewNop())

	if err := store.Load(context.Background()); err == nil {
		t.Error("Load() expected error for I/O failure, got nil")
	}
}

func TestStore_ToggleTwiceRestores(t *testing.T) {
	backend := &memBackend{}
	store := newTestStore(t, backend)
	ctx := context.Background()

	if _, err := store.Toggle(ctx, "2026-03-01"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	before := store.Count()

	marked, err := store.Toggle(ctx, "2026-05-05")
	if err != nil || !marked {
		t.Fatalf("Toggle() = %v, %v; want true, nil", marked, err)
	}
	if store.Count() != before+1 {
		t.Errorf("Count() = %d, want %d", store.Count(), before+1)
	}

	marked, err = store.Toggle(ctx, "2026-05-05")
	if err != nil || marked {
		t.Fatalf("second Toggle() = %v, %v; want false, nil", marked, err)
	}
	if store.Count() != before {
		t.Errorf("Count() after double toggle = %d, want %d", store.Count(), before)
	}
	if store.IsMarked("2026-05-05") {
		t.Error("key still marked after double toggle")
	}
	if backend.saves != 3 {
		t.Errorf("saves = %d, want 3 (write-through)", backend.saves)
	}
}

func TestStore_ToggleRejectsBadKey(t *testing.T) {
	store := newTestStore(t, &memBackend{})

	_, err := store.Toggle(context.Background(), "2026-02-30")
	if !errors.Is(err, calendar.ErrInvalidDateKey) {
		t.Errorf("Toggle() error = %v, want ErrInvalidDateKey", err)
	}
}

func TestStore_SaveFailureKeepsMemoryState(t *testing.T) {
	backend := &memBackend{failErr: errors.New("disk full")}
	store := newTestStore(t, backend)

	marked, err := store.Toggle(context.Background(), "2026-01-10")
	if err == nil {
		t.Fatal("Toggle() expected save error, got nil")
	}
	if !marked || !store.IsMarked("2026-01-10") {
		t.Error("in-memory state should keep the toggle after a failed save")
	}
}

func TestStore_RoundTripCount(t *testing.T) {
	backend := &memBackend{}
	store := newTestStore(t, backend)
	ctx := context.Background()

	for _, k := range []calendar.DateKey{"2026-01-01", "2026-01-02", "2026-12-31"} {
		if _, err := store.Toggle(ctx, k); err != nil {
			t.Fatalf("Toggle(%s) error = %v", k, err)
		}
	}
	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want := store.Count()

	reloaded := newTestStore(t, backend)
	if reloaded.Count() != want {
		t.Errorf("Count() after reload = %d, want %d", reloaded.Count(), want)
	}
	if !reloaded.Snapshot().Equal(store.Snapshot()) {
		t.Error("reloaded state differs from saved state")
	}
}

func TestStore_UpsertReplacesWholesale(t *testing.T) {
	store := newTestStore(t, &memBackend{})
	store.now = func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	err := store.Upsert(ctx, "2026-04-01", Journal{Notes: "first", Mood: MoodGood, Energy: 7, Gratitude: []string{"tea"}})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	err = store.Upsert(ctx, "2026-04-01", Journal{Mood: MoodOkay})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec, ok := store.Get("2026-04-01")
	if !ok || rec.Journal == nil {
		t.Fatalf("Get() = %+v, %v", rec, ok)
	}
	if rec.Journal.Notes != "" || rec.Journal.Energy != 0 || len(rec.Journal.Gratitude) != 0 {
		t.Errorf("Upsert() merged fields instead of replacing: %+v", rec.Journal)
	}
	if rec.Journal.Mood != MoodOkay {
		t.Errorf("Mood = %q, want okay", rec.Journal.Mood)
	}
	if !rec.Journal.UpdatedAt.Equal(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("UpdatedAt = %v", rec.Journal.UpdatedAt)
	}
	if rec.Marked {
		t.Error("journal entry must not mark the day")
	}
}

func TestStore_UpsertValidates(t *testing.T) {
	store := newTestStore(t, &memBackend{})
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Journal
	}{
		{"Energy too high", Journal{Energy: 11}},
		{"Negative energy", Journal{Energy: -1}},
		{"Unknown mood", Journal{Mood: "ecstatic"}},
		{"Negative steps", Journal{Steps: -3}},
		{"Too much sleep", Journal{SleepHours: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Upsert(ctx, "2026-04-01", tt.entry)
			if !errors.Is(err, ErrInvalidJournal) {
				t.Errorf("Upsert() error = %v, want ErrInvalidJournal", err)
			}
		})
	}
}

func TestStore_DeleteJournal(t *testing.T) {
	backend := &memBackend{}
	store := newTestStore(t, backend)
	ctx := context.Background()

	if err := store.Upsert(ctx, "2026-04-01", Journal{Notes: "x"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.DeleteJournal(ctx, "2026-04-01"); err != nil {
		t.Fatalf("DeleteJournal() error = %v", err)
	}
	if _, ok := store.Get("2026-04-01"); ok {
		t.Error("journal entry still present")
	}

	saves := backend.saves
	if err := store.DeleteJournal(ctx, "2026-04-02"); err != nil {
		t.Fatalf("DeleteJournal() error = %v", err)
	}
	if backend.saves != saves {
		t.Error("deleting a missing entry should not save")
	}
}

func TestStore_CountIn(t *testing.T) {
	store := newTestStore(t, &memBackend{})
	ctx := context.Background()

	for _, k := range []calendar.DateKey{"2025-12-31", "2026-01-01", "2026-06-15"} {
		if _, err := store.Toggle(ctx, k); err != nil {
			t.Fatalf("Toggle(%s) error = %v", k, err)
		}
	}

	if got := store.CountIn(2026); got != 2 {
		t.Errorf("CountIn(2026) = %d, want 2", got)
	}
	if got := store.CountIn(2025); got != 1 {
		t.Errorf("CountIn(2025) = %d, want 1", got)
	}
}

func TestStore_ConcurrentTogglesPersistLatest(t *testing.T) {
	backend := &memBackend{}
	store := newTestStore(t, backend)
	ctx := context.Background()

	var wg sync.WaitGroup
	for day := 1; day <= 50; day++ {
		key, err := calendar.KeyForDay(2026, day)
		if err != nil {
			t.Fatalf("KeyForDay() error = %v", err)
		}
		wg.Add(1)
		go func(k calendar.DateKey) {
			defer wg.Done()
			if _, err := store.Toggle(ctx, k); err != nil {
				t.Errorf("Toggle(%s) error = %v", k, err)
			}
		}(key)
	}
	wg.Wait()

	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if backend.state.Count() != 50 {
		t.Errorf("persisted count = %d, want 50", backend.state.Count())
	}
}

func TestStore_LoadDropsMalformedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dots.json")
	if err := os.WriteFile(path, []byte(`["2026-01-01","garbage","2026-02-30"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newTestStore(t, NewJSONFileBackend(dir, "dots", zap.NewNop()))
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}
