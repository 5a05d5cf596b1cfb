package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds the styles of one color mode
type Theme struct {
	Mode       string
	Title      lipgloss.Style
	Past       lipgloss.Style
	Today      lipgloss.Style
	Future     lipgloss.Style
	Marked     lipgloss.Style
	Cursor     lipgloss.Style
	CounterOn  lipgloss.Style
	CounterOff lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
}

// ThemeFor returns the theme of mode; unknown modes fall back to dark
func ThemeFor(mode string) Theme {
	if mode == ModeLight {
		return Theme{
			Mode:       ModeLight,
			Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f2937")),
			Past:       lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
			Today:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d97706")),
			Future:     lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")),
			Marked:     lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")),
			Cursor:     lipgloss.NewStyle().Reverse(true),
			CounterOn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")),
			CounterOff: lipgloss.NewStyle().Foreground(lipgloss.Color("#e5e7eb")),
			Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
			Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")),
			Help:       lipgloss.NewStyle().Faint(true),
		}
	}

	return Theme{
		Mode:       ModeDark,
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb")),
		Past:       lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
		Today:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24")),
		Future:     lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
		Marked:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")),
		Cursor:     lipgloss.NewStyle().Reverse(true),
		CounterOn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f9fafb")),
		CounterOff: lipgloss.NewStyle().Foreground(lipgloss.Color("#1f2937")),
		Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")),
		Help:       lipgloss.NewStyle().Faint(true),
	}
}

// NextMode returns the other color mode
func NextMode(mode string) string {
	if mode == ModeLight {
		return ModeDark
	}
	return ModeLight
}

// LoadThemeMode reads the remembered mode from path, or fallback when unset
func LoadThemeMode(path, fallback string) string {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	mode := strings.TrimSpace(string(data))
	if mode != ModeDark && mode != ModeLight {
		return fallback
	}
	return mode
}

// SaveThemeMode remembers mode at path
func SaveThemeMode(path, mode string) error {
	if mode != ModeDark && mode != ModeLight {
		return fmt.Errorf("unknown theme mode: %s", mode)
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create theme directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(mode+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
