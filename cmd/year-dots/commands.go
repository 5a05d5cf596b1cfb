package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/username/year-dots/internal/calendar"
	"github.com/username/year-dots/internal/tui"
	"github.com/username/year-dots/internal/yearview"
	"github.com/username/year-dots/internal/yeartracker"
	"github.com/username/year-dots/pkg/dateutil"
	"go.uber.org/zap"
)

func showCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the year grid and the counter",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			days, err := manager.Days()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d  %d/%d\n\n", manager.Year(), manager.Store().Count(), len(days))
			writeGrid(out, days)
			fmt.Fprintln(out)
			fmt.Fprint(out, manager.Counter(width).String("█", "·"))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 500, "Viewport width in pixels used to size the counter")

	return cmd
}

func writeGrid(w io.Writer, days []yearview.Day) {
	for i, d := range days {
		symbol := "○"
		switch {
		case d.Marked:
			symbol = "●"
		case d.Phase == yearview.Today:
			symbol = "◉"
		case d.Phase == yearview.Past:
			symbol = "•"
		}
		fmt.Fprint(w, symbol)
		if (i+1)%tui.DotsPerRow == 0 || i == len(days)-1 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, " ")
		}
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [today|DAY_INDEX|DATE]",
		Short: "Toggle a day (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			target := "today"
			if len(args) == 1 {
				target = args[0]
			}

			var (
				key    calendar.DateKey
				marked bool
			)
			switch {
			case target == "today":
				key = calendar.KeyOf(manager.Today())
				marked, err = manager.ToggleToday(cmd.Context())
			case isDayIndex(target):
				idx, _ := strconv.Atoi(target)
				key, err = calendar.KeyForDay(manager.Year(), idx)
				if err != nil {
					return err
				}
				marked, err = manager.ToggleDay(cmd.Context(), idx)
			default:
				key, err = parseKey(target)
				if err != nil {
					return err
				}
				marked, err = manager.ToggleKey(cmd.Context(), key)
			}
			if err != nil {
				return fmt.Errorf("failed to toggle %s: %w", target, err)
			}

			state := "unmarked"
			if marked {
				state = "marked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s, %d dots\n",
				key, yearview.FormatDay(key.Time()), state, manager.Store().Count())
			return nil
		},
	}
}

func countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of marked days",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			fmt.Fprintln(cmd.OutOrStdout(), manager.Store().Count())
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the year summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			status, err := manager.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}
			printStatus(out, status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")

	return cmd
}

func printStatus(w io.Writer, s yeartracker.Status) {
	fmt.Fprintf(w, "\n📊 Year %d\n", s.Year)
	fmt.Fprintln(w, "═══════════════════════════════════════")
	fmt.Fprintf(w, "  Days in year:   %d\n", s.TotalDays)
	fmt.Fprintf(w, "  Marked:         %d\n", s.Marked)
	fmt.Fprintf(w, "  Journaled:      %d\n", s.Journaled)
	fmt.Fprintf(w, "  Past days:      %d\n", s.PastDays)
	fmt.Fprintf(w, "  Remaining:      %d\n", s.Remaining)
	fmt.Fprintf(w, "  Elapsed:        %.1f%%\n", s.ElapsedPct)
	if s.InYear {
		today := "open"
		if s.TodayMarked {
			today = "marked"
		}
		fmt.Fprintf(w, "  Today:          %s, day %d (%s)\n", s.Today, s.TodayIndex, today)
	} else {
		fmt.Fprintf(w, "  Today:          %s, outside %d\n", s.Today, s.Year)
	}
}

func isDayIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseKey accepts a canonical date key or any layout dateutil understands
func parseKey(s string) (calendar.DateKey, error) {
	if key, _, err := calendar.ParseDateKey(s); err == nil {
		return key, nil
	}
	date, err := dateutil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", calendar.ErrInvalidDateKey, s)
	}
	return calendar.KeyOf(date), nil
}

// quietLogger keeps console logs off a full-screen terminal view
func quietLogger(logFile string) *zap.Logger {
	if logFile != "" {
		return logger
	}
	return zap.NewNop()
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
