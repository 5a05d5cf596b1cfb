package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/username/year-dots/internal/config"
	"github.com/username/year-dots/internal/yearview"
	"github.com/username/year-dots/internal/yeartracker"
	"go.uber.org/zap"
)

func newTestModel(t *testing.T, today time.Time) (Model, *yeartracker.Manager) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Year = 2026
	cfg.Storage.Dir = dir

	manager, err := yeartracker.Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := manager.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	manager.RefreshToday(today)

	opts := Options{CellPx: 8, ThemeMode: ModeDark, ThemeFile: filepath.Join(dir, "theme")}
	m, err := NewModel(context.Background(), manager, opts, zap.NewNop())
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m, manager
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModel_CursorOnToday(t *testing.T) {
	m, _ := newTestModel(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))

	if m.cursor != 59 {
		t.Errorf("cursor = %d, want 59", m.cursor)
	}
	if m.status.Text != "Sunday, March 1" {
		t.Errorf("status = %q", m.status.Text)
	}
}

func TestUpdate_ResizeOnlyTouchesCounter(t *testing.T) {
	m, _ := newTestModel(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))
	days := m.days

	tests := []struct {
		width    int
		wantCols int
	}{
		{40, 18},  // 320px
		{60, 20},  // 480px
		{120, 24}, // 960px
	}

	for _, tt := range tests {
		m = update(t, m, tea.WindowSizeMsg{Width: tt.width, Height: 40})
		if m.counter.Cols != tt.wantCols {
			t.Errorf("width %d: counter cols = %d, want %d", tt.width, m.counter.Cols, tt.wantCols)
		}
		if &m.days[0] != &days[0] || m.cursor != 59 {
			t.Errorf("width %d: resize rebuilt the grid or moved the cursor", tt.width)
		}
	}
}

func TestUpdate_ToggleUpdatesDotAndCounter(t *testing.T) {
	m, manager := newTestModel(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))
	before := m.counter.Lit()

	m = update(t, m, key(" "))
	if !m.days[59].Marked || manager.Store().Count() != 1 {
		t.Fatalf("toggle did not mark today: marked=%v count=%d", m.days[59].Marked, manager.Store().Count())
	}
	if m.counter.Lit() == before {
		t.Error("counter did not change after toggle")
	}
	if m.status.IsError {
		t.Errorf("unexpected error status %q", m.status.Text)
	}

	m = update(t, m, key(" "))
	if m.days[59].Marked || manager.Store().Count() != 0 {
		t.Error("second toggle did not unmark")
	}
}

func TestUpdate_CursorMovement(t *testing.T) {
	m, _ := newTestModel(t, time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local))

	m = update(t, m, key("left"))
	if m.cursor != 0 {
		t.Errorf("cursor moved before the first day: %d", m.cursor)
	}

	m = update(t, m, key("l"))
	m = update(t, m, key("down"))
	if m.cursor != 1+DotsPerRow {
		t.Errorf("cursor = %d, want %d", m.cursor, 1+DotsPerRow)
	}

	m = update(t, m, key("k"))
	m = update(t, m, key("h"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}

	m.cursor = 364
	m = update(t, m, key("j"))
	if m.cursor != 364 {
		t.Errorf("cursor moved past the last day: %d", m.cursor)
	}

	m = update(t, m, key("t"))
	if m.cursor != 0 {
		t.Errorf("jump to today: cursor = %d, want 0", m.cursor)
	}
}

func TestUpdate_JumpToTodayOutsideYear(t *testing.T) {
	m, _ := newTestModel(t, time.Date(2027, 2, 1, 9, 0, 0, 0, time.Local))

	m = update(t, m, key("t"))
	if !m.status.IsError {
		t.Error("expected an error status when today is outside the year")
	}
	for _, d := range m.days {
		if d.Phase != yearview.Past {
			t.Fatalf("day %d phase = %v, want past", d.Index, d.Phase)
		}
	}
}

func TestUpdate_SwitchThemeIsRemembered(t *testing.T) {
	m, _ := newTestModel(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))

	m = update(t, m, key("T"))
	if m.theme.Mode != ModeLight {
		t.Fatalf("theme = %s, want light", m.theme.Mode)
	}
	if got := LoadThemeMode(m.opts.ThemeFile, ModeDark); got != ModeLight {
		t.Errorf("remembered theme = %s, want light", got)
	}

	m = update(t, m, key("T"))
	if m.theme.Mode != ModeDark {
		t.Errorf("theme = %s, want dark", m.theme.Mode)
	}
}

func TestUpdate_Quit(t *testing.T) {
	m, _ := newTestModel(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))

	next, cmd := m.Update(key("q"))
	if cmd == nil || !next.(Model).quitting {
		t.Error("q should quit")
	}
	if next.View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))
	m = update(t, m, key(" "))

	view := m.View()
	if !strings.Contains(view, "2026  1/365") {
		t.Errorf("View() missing title:\n%s", view)
	}
	if !strings.Contains(view, "Sunday, March 1") {
		t.Errorf("View() missing tooltip:\n%s", view)
	}
}

func TestLoadThemeMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme")

	if got := LoadThemeMode(path, ModeDark); got != ModeDark {
		t.Errorf("LoadThemeMode(missing) = %s, want dark", got)
	}
	if err := SaveThemeMode(path, "sepia"); err == nil {
		t.Error("SaveThemeMode() accepted an unknown mode")
	}
	if err := SaveThemeMode(path, ModeLight); err != nil {
		t.Fatalf("SaveThemeMode() error = %v", err)
	}
	if got := LoadThemeMode(path, ModeDark); got != ModeLight {
		t.Errorf("LoadThemeMode() = %s, want light", got)
	}
	if NextMode(ModeLight) != ModeDark || NextMode(ModeDark) != ModeLight {
		t.Error("NextMode() does not alternate")
	}
}
