package daystate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/username/year-dots/internal/calendar"
	"go.uber.org/zap"
)

// SQLiteBackend stores the aggregate in SQLite tables, one scope per storage key
type SQLiteBackend struct {
	db     *sql.DB
	scope  string
	logger *zap.Logger
}

// NewSQLiteBackend opens (and migrates) the database at path
func NewSQLiteBackend(path, scope string, logger *zap.Logger) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	b := &SQLiteBackend{db: db, scope: scope, logger: logger}
	if err := b.init(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite day state initialized", zap.String("path", path), zap.String("scope", scope))
	return b, nil
}

func (b *SQLiteBackend) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			scope TEXT PRIMARY KEY,
			saved_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS marked_days (
			scope TEXT NOT NULL,
			date TEXT NOT NULL,
			PRIMARY KEY (scope, date)
		)`,

		`CREATE TABLE IF NOT EXISTS journal (
			scope TEXT NOT NULL,
			date TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			mood TEXT NOT NULL DEFAULT '',
			energy INTEGER NOT NULL DEFAULT 0 CHECK(energy >= 0 AND energy <= 10),
			gratitude TEXT NOT NULL DEFAULT '[]',
			highlights TEXT NOT NULL DEFAULT '',
			sleep_hours REAL NOT NULL DEFAULT 0,
			steps INTEGER NOT NULL DEFAULT 0,
			selfie TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (scope, date)
		)`,
	}

	for _, query := range queries {
		if _, err := b.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Load reads the scope's rows
func (b *SQLiteBackend) Load(ctx context.Context) (*DayState, error) {
	var savedAt string
	err := b.db.QueryRowContext(ctx, `SELECT saved_at FROM saves WHERE scope = ?`, b.scope).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save marker: %w", err)
	}

	state := NewDayState()

	rows, err := b.db.QueryContext(ctx, `SELECT date FROM marked_days WHERE scope = ?`, b.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query marked days: %w", err)
	}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan marked day: %w", err)
		}
		state.Marked[calendar.DateKey(date)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read marked days: %w", err)
	}
	rows.Close()

	rows, err = b.db.QueryContext(ctx, `
		SELECT date, notes, mood, energy, gratitude, highlights, sleep_hours, steps, selfie, updated_at
		FROM journal
		WHERE scope = ?
	`, b.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var corrupt error
	for rows.Next() {
		var (
			date, mood, gratitude, updatedAt string
			j                                Journal
		)
		err := rows.Scan(
			&date,
			&j.Notes,
			&mood,
			&j.Energy,
			&gratitude,
			&j.Highlights,
			&j.SleepHours,
			&j.Steps,
			&j.Selfie,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		j.Mood = Mood(mood)
		if err := json.Unmarshal([]byte(gratitude), &j.Gratitude); err != nil {
			corrupt = fmt.Errorf("%w: gratitude of %s: %v", ErrCorrupt, date, err)
			break
		}
		if len(j.Gratitude) == 0 {
			j.Gratitude = nil
		}
		if updatedAt != "" {
			if j.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
				corrupt = fmt.Errorf("%w: updated_at of %s: %v", ErrCorrupt, date, err)
				break
			}
		}

		state.Journal[calendar.DateKey(date)] = j
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	// the single connection must be free before quarantine runs
	rows.Close()

	if corrupt != nil {
		if err := b.quarantine(ctx); err != nil {
			return nil, err
		}
		return nil, corrupt
	}

	b.logger.Debug("SQLite state read", zap.String("scope", b.scope), zap.String("saved_at", savedAt))
	return state, nil
}

// quarantine moves the scope's rows to a side scope so the next save does not replace them
func (b *SQLiteBackend) quarantine(ctx context.Context) error {
	side := b.scope + ".corrupt-" + time.Now().UTC().Format("20060102T150405")

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"saves", "marked_days", "journal"} {
		query := fmt.Sprintf(`UPDATE %s SET scope = ? WHERE scope = ?`, table)
		if _, err := tx.ExecContext(ctx, query, side, b.scope); err != nil {
			return fmt.Errorf("failed to move corrupt %s aside: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quarantine: %w", err)
	}

	b.logger.Warn("Moved corrupt day state aside", zap.String("scope", b.scope), zap.String("moved_to", side))
	return nil
}

// Save replaces the scope's rows in one transaction
func (b *SQLiteBackend) Save(ctx context.Context, state *DayState) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM marked_days WHERE scope = ?`, b.scope); err != nil {
		return fmt.Errorf("failed to clear marked days: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM journal WHERE scope = ?`, b.scope); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}

	markStmt, err := tx.PrepareContext(ctx, `INSERT INTO marked_days (scope, date) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer markStmt.Close()

	for _, key := range state.MarkedKeys() {
		if _, err := markStmt.ExecContext(ctx, b.scope, string(key)); err != nil {
			return fmt.Errorf("failed to insert marked day %s: %w", key, err)
		}
	}

	journalStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal (scope, date, notes, mood, energy, gratitude, highlights, sleep_hours, steps, selfie, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer journalStmt.Close()

	for _, key := range state.JournalKeys() {
		j := state.Journal[key]

		gratitude := j.Gratitude
		if gratitude == nil {
			gratitude = []string{}
		}
		gratitudeJSON, err := json.Marshal(gratitude)
		if err != nil {
			return fmt.Errorf("failed to marshal gratitude: %w", err)
		}

		updatedAt := ""
		if !j.UpdatedAt.IsZero() {
			updatedAt = j.UpdatedAt.UTC().Format(time.RFC3339Nano)
		}

		_, err = journalStmt.ExecContext(ctx,
			b.scope, string(key), j.Notes, string(j.Mood), j.Energy, string(gratitudeJSON),
			j.Highlights, j.SleepHours, j.Steps, j.Selfie, updatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert journal entry %s: %w", key, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO saves (scope, saved_at) VALUES (?, ?)
		ON CONFLICT(scope) DO UPDATE SET saved_at = excluded.saved_at
	`, b.scope, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to update save marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit day state: %w", err)
	}

	return nil
}

// Close closes the database
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
