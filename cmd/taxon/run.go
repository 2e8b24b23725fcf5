package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/taxon/internal/cli"
	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/config"
	"github.com/Veraticus/taxon/internal/dataset"
	"github.com/Veraticus/taxon/internal/engine"
	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/report"
	"github.com/Veraticus/taxon/internal/storage"
	"github.com/spf13/cobra"
)

// runOptions are the switches shared by run and schedule.
type runOptions struct {
	progress  io.Writer // nil disables the progress bar
	dryRun    bool
	noHistory bool
	noReport  bool
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Recategorize every record against the mapping table",
		Long: `Classify each record from its weighted signals, rewrite its category
and group, then write the updated records, the statistics file and the
Markdown migration report. Nothing is written if the mapping is unusable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			opts.progress = cmd.ErrOrStderr()
			stats, err := executeRun(cmd.Context(), settings, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderSummary(stats))
			if opts.dryRun {
				fmt.Fprintln(out, cli.FormatInfo("Dry run: no files were written"))
			} else {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Records written to %s", settings.OutputPath)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Classify without writing records, stats or report")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.Flags().BoolVar(&opts.noReport, "no-report", false, "Skip the Markdown report")
	addPathFlags(cmd)

	return cmd
}

// addPathFlags registers the overrides understood by applyFlagOverrides.
func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().String("records", "", "Records file (default from paths.records)")
	cmd.Flags().String("mapping", "", "Mapping file, JSON or YAML (default from paths.mapping)")
	cmd.Flags().String("output", "", "Where to write updated records (default: overwrite the records file)")
	cmd.Flags().Int("workers", 1, "Number of shards classified in parallel")
}

// executeRun performs one full batch and returns its statistics. Files are
// written only after every record has been classified.
func executeRun(ctx context.Context, settings *config.Settings, opts runOptions) (*model.RunStats, error) {
	table, err := loadTable(settings)
	if err != nil {
		return nil, err
	}

	classifier, err := newClassifier(settings, table)
	if err != nil {
		return nil, err
	}

	records, err := dataset.LoadRecords(settings.RecordsPath)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded inputs",
		"records", len(records),
		"legacy_labels", table.LegacyLabelCount(),
		"categories", len(table.Categories()),
		"groups", len(table.Groups()))

	engineOpts := engine.Options{Workers: settings.Workers}
	if opts.progress != nil {
		engineOpts.Progress = cli.NewProgressBar(opts.progress, len(records), "Recategorizing")
	}

	startedAt := time.Now()
	outcome, err := engine.NewProcessor(classifier, table, engineOpts).Process(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("recategorization failed: %w", err)
	}
	finishedAt := time.Now()

	if !opts.dryRun {
		if err := dataset.SaveRecords(settings.OutputPath, records); err != nil {
			return nil, err
		}
		if err := dataset.SaveStats(settings.StatsPath, outcome.Stats); err != nil {
			return nil, err
		}
		slog.Info("Saved records and statistics",
			"records_path", settings.OutputPath,
			"stats_path", settings.StatsPath)

		if !opts.noReport {
			content := report.Generate(outcome.Stats, table, report.Options{
				GeneratedAt:   finishedAt,
				SampleChanges: settings.SampleChanges,
			})
			if err := dataset.SaveReport(settings.ReportPath, content); err != nil {
				return nil, err
			}
			slog.Info("Saved migration report", "path", settings.ReportPath)
		}
	}

	if !opts.noHistory {
		if err := recordHistory(ctx, settings, outcome, startedAt, finishedAt, opts.dryRun); err != nil {
			return nil, err
		}
	}

	return outcome.Stats, nil
}

// historyRetry covers a scheduled run and a history query contending for the
// database lock.
var historyRetry = common.RetryOptions{MaxAttempts: 4, InitialDelay: 250 * time.Millisecond}

func recordHistory(ctx context.Context, settings *config.Settings, outcome *engine.Outcome, startedAt, finishedAt time.Time, dryRun bool) error {
	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close history database", "error", err)
		}
	}()

	run := model.NewRun(outcome.Stats, startedAt, finishedAt)
	run.RecordsPath = settings.RecordsPath
	run.MappingPath = settings.MappingPath
	run.DryRun = dryRun

	err = common.WithRetry(ctx, func() error {
		err := store.SaveRun(ctx, &run, outcome.Decisions)
		if err != nil && !storage.IsBusy(err) {
			return common.Permanent(err)
		}
		return err
	}, historyRetry)
	if err != nil {
		return fmt.Errorf("failed to record run history: %w", err)
	}

	slog.Info("Recorded run", "run_id", run.ID)
	return nil
}
