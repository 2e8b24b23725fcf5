package main

import (
	"fmt"

	"github.com/Veraticus/taxon/internal/cli"
	"github.com/Veraticus/taxon/internal/dataset"
	"github.com/Veraticus/taxon/internal/tui"
	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Browse the manual-review queue of the last run",
		Long: `Open a read-only table of the records the last run flagged for manual
review, loaded from the statistics file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			stats, err := dataset.LoadStats(settings.StatsPath)
			if err != nil {
				return err
			}

			if len(stats.ManualReview) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("No records flagged for manual review"))
				return nil
			}

			return tui.RunReview(cmd.Context(), stats.ManualReview)
		},
	}

	cmd.Flags().String("stats", "", "Statistics file (default from paths.stats)")

	return cmd
}
