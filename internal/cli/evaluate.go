package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
	"github.com/dallae-labs/dallae/backend/internal/store"
)

type evaluateOptions struct {
	Text         string
	Emotion      string
	Intensity    int
	KeywordsFile string
	SQLitePath   string
	Days         int
}

// NewEvaluateCommand creates the evaluate command: it runs the local crisis
// layers against the given inputs, optionally pulling pattern history from a
// SQLite timeline.
func NewEvaluateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:          "evaluate",
		Short:        "Run the crisis evaluator against ad-hoc input",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "free text to score")
	cmd.Flags().StringVar(&opts.Emotion, "emotion", "", "emotion (joy|peace|anxiety|sadness|anger)")
	cmd.Flags().IntVar(&opts.Intensity, "intensity", 0, "intensity 1-10")
	cmd.Flags().StringVar(&opts.KeywordsFile, "keywords", "", "YAML keyword file replacing the built-in list")
	cmd.Flags().StringVar(&opts.SQLitePath, "sqlite", "", "SQLite timeline whose history feeds the pattern layer")
	cmd.Flags().IntVar(&opts.Days, "days", 14, "history window in days")

	return cmd
}

func runEvaluate(rootOpts *RootOptions, opts *evaluateOptions, cmd *cobra.Command) error {
	in := analysis.Input{Text: opts.Text, Intensity: opts.Intensity}
	if opts.Emotion != "" {
		emotion, err := checkin.ParseEmotion(opts.Emotion)
		if err != nil {
			return err
		}
		in.Emotion = emotion
	}

	keywords := analysis.DefaultKeywords()
	if opts.KeywordsFile != "" {
		loaded, err := analysis.LoadKeywordsFile(opts.KeywordsFile)
		if err != nil {
			return err
		}
		keywords = loaded
	}

	if opts.SQLitePath != "" {
		timeline, err := store.New(store.TypeSQLite, store.WithSQLitePath(opts.SQLitePath))
		if err != nil {
			return err
		}
		defer timeline.Close()
		recent, err := timeline.RecentEntries(cmd.Context(), opts.Days)
		if err != nil {
			return err
		}
		in.Recent = recent
	}

	result := analysis.New(keywords).Evaluate(in)

	if rootOpts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !result.IsCrisis {
		fmt.Fprintln(cmd.OutOrStdout(), "no crisis signal")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "crisis signal: reason=%s confidence=%s\n", result.Reason, result.Confidence)
	if result.Details != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "details: %s\n", result.Details)
	}
	return nil
}
