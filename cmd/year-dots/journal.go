package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/username/year-dots/internal/daystate"
)

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Read and write per-day journal entries",
	}

	cmd.AddCommand(journalGetCmd(), journalSetCmd(), journalDeleteCmd(), journalSelfieCmd())

	return cmd
}

func journalGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get DATE",
		Short: "Print the journal entry of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}

			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			rec, _ := manager.Record(key)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Date    string            `json:"date"`
				Marked  bool              `json:"marked"`
				Journal *daystate.Journal `json:"journal"`
			}{key.String(), rec.Marked, rec.Journal})
		},
	}
}

func journalSetCmd() *cobra.Command {
	var (
		notes      string
		mood       string
		energy     int
		gratitude  []string
		highlights string
		sleepHours float64
		steps      int
		replace    bool
	)

	cmd := &cobra.Command{
		Use:   "set DATE",
		Short: "Write the journal entry of a day",
		Long:  "Write the journal entry of a day. Only the given fields change unless --replace is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}

			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			var entry daystate.Journal
			if rec, _ := manager.Record(key); rec.Journal != nil && !replace {
				entry = *rec.Journal
			}

			flags := cmd.Flags()
			if flags.Changed("notes") {
				entry.Notes = notes
			}
			if flags.Changed("mood") {
				m, err := daystate.ParseMood(mood)
				if err != nil {
					return err
				}
				entry.Mood = m
			}
			if flags.Changed("energy") {
				entry.Energy = energy
			}
			if flags.Changed("gratitude") {
				entry.Gratitude = gratitude
			}
			if flags.Changed("highlights") {
				entry.Highlights = highlights
			}
			if flags.Changed("sleep") {
				entry.SleepHours = sleepHours
			}
			if flags.Changed("steps") {
				entry.Steps = steps
			}

			if err := manager.SaveJournal(cmd.Context(), key, entry); err != nil {
				return fmt.Errorf("failed to save journal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Journal saved for %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&mood, "mood", "", "Mood: awful, bad, okay, good, great")
	cmd.Flags().IntVar(&energy, "energy", 0, "Energy level 1-10")
	cmd.Flags().StringSliceVar(&gratitude, "gratitude", nil, "Things you are grateful for (repeatable)")
	cmd.Flags().StringVar(&highlights, "highlights", "", "Highlight of the day")
	cmd.Flags().Float64Var(&sleepHours, "sleep", 0, "Hours slept")
	cmd.Flags().IntVar(&steps, "steps", 0, "Steps walked")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the whole entry instead of updating given fields")

	return cmd
}

func journalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DATE",
		Short: "Delete the journal entry of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}

			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			if err := manager.DeleteJournal(cmd.Context(), key); err != nil {
				return fmt.Errorf("failed to delete journal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🗑  Journal deleted for %s\n", key)
			return nil
		},
	}
}

func journalSelfieCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selfie DATE IMAGE",
		Short: "Attach a picture to the journal entry of a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}

			_, manager, err := initializeManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			name, err := manager.AttachSelfie(cmd.Context(), key, args[1])
			if err != nil {
				return fmt.Errorf("failed to attach selfie: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "📷 Selfie stored as %s\n", manager.BlobPath(name))
			return nil
		},
	}
}
