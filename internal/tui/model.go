package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/username/year-dots/internal/dotfont"
	"github.com/username/year-dots/internal/yearview"
	"github.com/username/year-dots/internal/yeartracker"
	"go.uber.org/zap"
)

// DotsPerRow is the number of day dots on one grid line
const DotsPerRow = 21

// Options configures the interactive view
type Options struct {
	CellPx    int    // approximate pixels per terminal column
	ThemeMode string // initial color mode
	ThemeFile string // where theme switches are remembered
}

// StatusBar is the bottom line of the view
type StatusBar struct {
	Text    string
	IsError bool
}

// Model is the bubbletea model of the year grid
type Model struct {
	manager *yeartracker.Manager
	logger  *zap.Logger
	ctx     context.Context
	opts    Options

	days    []yearview.Day
	cursor  int // 0-based index into days
	width   int // terminal columns
	counter dotfont.Grid
	theme   Theme
	status  StatusBar

	quitting bool
}

// NewModel builds the initial view of manager's year with the cursor on today
func NewModel(ctx context.Context, manager *yeartracker.Manager, opts Options, logger *zap.Logger) (Model, error) {
	if opts.CellPx <= 0 {
		opts.CellPx = 8
	}

	days, err := manager.Days()
	if err != nil {
		return Model{}, fmt.Errorf("failed to build year grid: %w", err)
	}

	m := Model{
		manager: manager,
		logger:  logger,
		ctx:     ctx,
		opts:    opts,
		days:    days,
		theme:   ThemeFor(LoadThemeMode(opts.ThemeFile, opts.ThemeMode)),
	}
	m.counter = manager.Counter(m.viewportWidth())
	if idx := manager.TodayIndex(); idx > 0 {
		m.cursor = idx - 1
	}
	m.status = StatusBar{Text: m.tooltip()}

	return m, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.counter = m.manager.Counter(m.viewportWidth())
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "left", "h":
			m.moveCursor(-1)
		case "right", "l":
			m.moveCursor(1)
		case "up", "k":
			m.moveCursor(-DotsPerRow)
		case "down", "j":
			m.moveCursor(DotsPerRow)
		case " ", "enter":
			m.toggle()
		case "t":
			m.jumpToToday()
		case "T":
			m.switchTheme()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) viewportWidth() int {
	return m.width * m.opts.CellPx
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.days) {
		return
	}
	m.cursor = next
	m.status = StatusBar{Text: m.tooltip()}
}

func (m *Model) jumpToToday() {
	idx := m.manager.TodayIndex()
	if idx < 1 {
		m.status = StatusBar{Text: fmt.Sprintf("Today is not in %d", m.manager.Year()), IsError: true}
		return
	}
	m.cursor = idx - 1
	m.status = StatusBar{Text: m.tooltip()}
}

func (m *Model) toggle() {
	day := &m.days[m.cursor]
	marked, err := m.manager.ToggleDay(m.ctx, day.Index)
	day.Marked = marked
	m.counter = m.manager.Counter(m.viewportWidth())

	if err != nil {
		m.logger.Error("Failed to toggle day", zap.Int("day", day.Index), zap.Error(err))
		m.status = StatusBar{Text: fmt.Sprintf("Not saved: %v", err), IsError: true}
		return
	}
	m.status = StatusBar{Text: m.tooltip()}
}

func (m *Model) switchTheme() {
	mode := NextMode(m.theme.Mode)
	m.theme = ThemeFor(mode)
	if err := SaveThemeMode(m.opts.ThemeFile, mode); err != nil {
		m.logger.Warn("Failed to remember theme", zap.Error(err))
		m.status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.status = StatusBar{Text: "Theme: " + mode}
}

func (m Model) tooltip() string {
	if len(m.days) == 0 {
		return ""
	}
	day := m.days[m.cursor]
	text := yearview.FormatDay(day.Date)
	if day.Marked {
		text += " ✓"
	}
	if emoji := day.Mood.Emoji(); emoji != "" {
		text += " " + emoji
	}
	return text
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	marked := 0
	for _, d := range m.days {
		if d.Marked {
			marked++
		}
	}
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("%d  %d/%d", m.manager.Year(), marked, len(m.days))))
	b.WriteString("\n\n")

	for i, d := range m.days {
		b.WriteString(m.renderDot(i, d))
		if (i+1)%DotsPerRow == 0 || i == len(m.days)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString("\n")

	b.WriteString(m.renderCounter())
	b.WriteString("\n")

	if m.status.IsError {
		b.WriteString(m.theme.Error.Render(m.status.Text))
	} else {
		b.WriteString(m.theme.Status.Render(m.status.Text))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("←↓↑→/hjkl move  space toggle  t today  T theme  q quit"))

	return b.String()
}

func (m Model) renderDot(i int, d yearview.Day) string {
	symbol := "○"
	style := m.theme.Future
	switch {
	case d.Marked:
		symbol = "●"
		style = m.theme.Marked
	case d.Phase == yearview.Today:
		symbol = "◉"
		style = m.theme.Today
	case d.Phase == yearview.Past:
		symbol = "•"
		style = m.theme.Past
	}
	if d.HasJournal && !d.Marked {
		symbol = "◍"
	}
	if i == m.cursor {
		style = style.Inherit(m.theme.Cursor)
	}
	return style.Render(symbol)
}

func (m Model) renderCounter() string {
	var b strings.Builder
	for r := 0; r < m.counter.Rows; r++ {
		for c := 0; c < m.counter.Cols; c++ {
			if m.counter.At(r, c) {
				b.WriteString(m.theme.CounterOn.Render("█"))
			} else {
				b.WriteString(m.theme.CounterOff.Render("·"))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Run starts the interactive view and blocks until the user quits
func Run(ctx context.Context, manager *yeartracker.Manager, opts Options, logger *zap.Logger) error {
	model, err := NewModel(ctx, manager, opts, logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run tui: %w", err)
	}
	return nil
}
