package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/year-dots/internal/dotfont"
	"github.com/username/year-dots/internal/export"
	"github.com/username/year-dots/internal/tui"
)

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the year as png, ics or json",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "-", "Output file (- for stdout)")

	var (
		perRow  int
		dotSize int
		theme   string
	)
	pngCmd := &cobra.Command{
		Use:   "png",
		Short: "Render a poster of the year",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			days, err := manager.Days()
			if err != nil {
				return err
			}

			if theme == "" {
				theme = tui.LoadThemeMode(cfg.Theme.File, cfg.Theme.Mode)
			}
			opts := export.PNGOptions{
				PerRow:  perRow,
				DotSize: dotSize,
				Caption: fmt.Sprintf("%d: %d dots", manager.Year(), manager.Store().Count()),
			}
			if theme == tui.ModeLight {
				opts.Palette = export.LightPalette
			}

			counter := dotfont.Render(manager.Store().Count(), dotfont.FixedColumns)
			return writeOutput(output, func(w io.Writer) error {
				return export.PNG(w, days, counter, opts)
			})
		},
	}
	pngCmd.Flags().IntVar(&perRow, "per-row", 20, "Dots per row")
	pngCmd.Flags().IntVar(&dotSize, "dot-size", 16, "Dot diameter in pixels")
	pngCmd.Flags().StringVar(&theme, "theme", "", "dark or light (default: current theme)")

	icsCmd := &cobra.Command{
		Use:   "ics",
		Short: "Export marked days as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			return writeOutput(output, func(w io.Writer) error {
				return export.ICS(w, manager.Year(), manager.Store().Snapshot(), time.Now())
			})
		},
	}

	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "Export the stored state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			return writeOutput(output, func(w io.Writer) error {
				return export.JSON(w, manager.Store().Snapshot(), time.Now())
			})
		},
	}

	cmd.AddCommand(pngCmd, icsCmd, jsonCmd)

	return cmd
}

func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or switch the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{tui.ModeDark, tui.ModeLight, "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			current := tui.LoadThemeMode(cfg.Theme.File, cfg.Theme.Mode)
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), current)
				return nil
			}

			next := args[0]
			if next == "toggle" {
				next = tui.NextMode(current)
			}
			if err := tui.SaveThemeMode(cfg.Theme.File, next); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}
}
