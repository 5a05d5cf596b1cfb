package daystate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/username/year-dots/internal/calendar"
	"go.uber.org/zap"
)

const fileLayoutVersion = 1

// fileLayout is the on-disk JSON shape
type fileLayout struct {
	Version int                `json:"version"`
	Marked  []string           `json:"marked"`
	Journal map[string]Journal `json:"journal,omitempty"`
	SavedAt string             `json:"saved_at,omitempty"`
}

// JSONFileBackend stores the aggregate as one JSON file per storage key
type JSONFileBackend struct {
	path   string
	logger *zap.Logger
}

// NewJSONFileBackend creates a backend writing <dir>/<key>.json
func NewJSONFileBackend(dir, key string, logger *zap.Logger) *JSONFileBackend {
	return &JSONFileBackend{
		path:   filepath.Join(dir, key+".json"),
		logger: logger,
	}
}

// Path returns the state file location
func (b *JSONFileBackend) Path() string {
	return b.path
}

// Load reads the state file. Both the current object layout and the
// legacy bare array of date keys are accepted.
func (b *JSONFileBackend) Load(ctx context.Context) (*DayState, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet - will be created on first save
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state, err := DecodeJSON(data)
	if errors.Is(err, ErrCorrupt) {
		if qerr := b.quarantine(); qerr != nil {
			return nil, qerr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	b.logger.Debug("State file read", zap.String("file", b.path), zap.Int("bytes", len(data)))
	return state, nil
}

// quarantine moves an undecodable state file aside so the next save does not replace it
func (b *JSONFileBackend) quarantine() error {
	dst := b.path + ".corrupt-" + time.Now().UTC().Format("20060102T150405")
	if err := os.Rename(b.path, dst); err != nil {
		return fmt.Errorf("failed to move corrupt state file aside: %w", err)
	}
	b.logger.Warn("Moved corrupt state file aside", zap.String("file", b.path), zap.String("moved_to", dst))
	return nil
}

// Save writes the state file atomically
func (b *JSONFileBackend) Save(ctx context.Context, state *DayState) error {
	data, err := EncodeJSON(state, time.Now())
	if err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Close is a no-op for files
func (b *JSONFileBackend) Close() error {
	return nil
}

// EncodeJSON renders state in the canonical file layout, marked keys sorted
func EncodeJSON(state *DayState, savedAt time.Time) ([]byte, error) {
	layout := fileLayout{
		Version: fileLayoutVersion,
		Marked:  make([]string, 0, len(state.Marked)),
	}
	for _, k := range state.MarkedKeys() {
		layout.Marked = append(layout.Marked, string(k))
	}
	if len(state.Journal) > 0 {
		layout.Journal = make(map[string]Journal, len(state.Journal))
		for k, j := range state.Journal {
			layout.Journal[string(k)] = j
		}
	}
	if !savedAt.IsZero() {
		layout.SavedAt = savedAt.UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

// DecodeJSON parses either layout. Empty input is ErrNoState, undecodable
// input is ErrCorrupt.
func DecodeJSON(data []byte) (*DayState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNoState
	}

	state := NewDayState()

	switch trimmed[0] {
	case '[':
		var keys []string
		if err := json.Unmarshal(trimmed, &keys); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		for _, k := range keys {
			state.Marked[calendar.DateKey(k)] = struct{}{}
		}

	case '{':
		var layout fileLayout
		if err := json.Unmarshal(trimmed, &layout); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if layout.Version > fileLayoutVersion {
			// written by a newer version
			return nil, fmt.Errorf("unsupported state layout version %d", layout.Version)
		}
		for _, k := range layout.Marked {
			state.Marked[calendar.DateKey(k)] = struct{}{}
		}
		for k, j := range layout.Journal {
			state.Journal[calendar.DateKey(k)] = j
		}

	default:
		return nil, fmt.Errorf("%w: unexpected leading byte %q", ErrCorrupt, trimmed[0])
	}

	return state, nil
}
