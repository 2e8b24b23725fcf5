package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/taxon/internal/cli"
	"github.com/Veraticus/taxon/internal/dataset"
	"github.com/Veraticus/taxon/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Regenerate the migration report from a saved statistics file",
		Long: `Render the Markdown migration report from the statistics written by the
last run, without classifying anything again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			table, err := loadTable(settings)
			if err != nil {
				return err
			}

			stats, err := dataset.LoadStats(settings.StatsPath)
			if err != nil {
				return err
			}

			content := report.Generate(stats, table, report.Options{
				GeneratedAt:   time.Now(),
				SampleChanges: settings.SampleChanges,
			})

			if stdout {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			if err := dataset.SaveReport(settings.ReportPath, content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Report written to %s", settings.ReportPath)))
			return nil
		},
	}

	cmd.Flags().String("mapping", "", "Mapping file, JSON or YAML (default from paths.mapping)")
	cmd.Flags().String("stats", "", "Statistics file (default from paths.stats)")
	cmd.Flags().String("report", "", "Report destination (default from paths.report)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the report instead of writing it")

	return cmd
}
