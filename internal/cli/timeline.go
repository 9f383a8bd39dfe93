package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dallae-labs/dallae/backend/internal/store"
)

type timelineOptions struct {
	SQLitePath string
	Days       int
}

// NewTimelineCommand creates the timeline command: it lists recent entries
// from a SQLite timeline file.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &timelineOptions{}

	cmd := &cobra.Command{
		Use:          "timeline",
		Short:        "List recent check-in entries from a SQLite timeline",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SQLitePath, "sqlite", "dallae.db", "SQLite timeline file")
	cmd.Flags().IntVar(&opts.Days, "days", 30, "history window in days")

	return cmd
}

func runTimeline(rootOpts *RootOptions, opts *timelineOptions, cmd *cobra.Command) error {
	timeline, err := store.New(store.TypeSQLite, store.WithSQLitePath(opts.SQLitePath))
	if err != nil {
		return err
	}
	defer timeline.Close()

	entries, err := timeline.RecentEntries(cmd.Context(), opts.Days)
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no entries in the last %d days\n", opts.Days)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-5s  %-7s %2d  %s\n",
			e.Date.Format("2006-01-02"), e.Kind, e.Emotion, e.Intensity, e.Summary)
	}
	return nil
}
