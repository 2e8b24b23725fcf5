package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/taxon/internal/cli"
	"github.com/Veraticus/taxon/internal/model"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var (
		runID string
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `List previous runs from the history database, newest first. With --run,
print the decisions that run flagged for manual review (or every decision
with --all).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Warn("Failed to close history database", "error", err)
				}
			}()

			out := cmd.OutOrStdout()

			if runID != "" {
				run, err := store.GetRun(ctx, runID)
				if err != nil {
					return fmt.Errorf("failed to get run %s: %w", runID, err)
				}
				decisions, err := store.GetDecisions(ctx, runID, !all)
				if err != nil {
					return fmt.Errorf("failed to get decisions: %w", err)
				}
				return printRunDetail(out, run, decisions)
			}

			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			return printRuns(out, runs)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show the decisions of one run")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "With --run, show every decision instead of only flagged ones")

	return cmd
}

func printRuns(out io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No runs recorded yet. Use 'taxon run' to create one."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.BoldStyle.Render("Run"),
		cli.BoldStyle.Render("Started"),
		cli.BoldStyle.Render("Duration"),
		cli.BoldStyle.Render("Records"),
		cli.BoldStyle.Render("Changed"),
		cli.BoldStyle.Render("Review"),
		cli.BoldStyle.Render("Skipped"))
	for _, r := range runs {
		id := r.ID
		if r.DryRun {
			id += " (dry run)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			id,
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.TotalRecords,
			r.Recategorized,
			r.ReviewCount,
			r.SkippedCount)
	}
	return w.Flush()
}

func printRunDetail(out io.Writer, run *model.Run, decisions []model.Decision) error {
	fmt.Fprintln(out, cli.FormatTitle("Run "+run.ID))
	fmt.Fprintf(out, "Records: %s\nMapping: %s\nStarted: %s\n",
		run.RecordsPath, run.MappingPath, run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Total: %d  Recategorized: %d  Unchanged: %d  Review: %d  Skipped: %d\n\n",
		run.TotalRecords, run.Recategorized, run.Unchanged, run.ReviewCount, run.SkippedCount)

	if len(decisions) == 0 {
		fmt.Fprintln(out, cli.FormatSuccess("No decisions to show"))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.BoldStyle.Render("ID"),
		cli.BoldStyle.Render("Name"),
		cli.BoldStyle.Render("Old"),
		cli.BoldStyle.Render("New"),
		cli.BoldStyle.Render("Confidence"),
		cli.BoldStyle.Render("Reason"))
	for _, d := range decisions {
		old := d.OldCategory
		if old == "" {
			old = model.NoPreviousCategory
		}
		reason := d.Result.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.RecordID, d.Name, old, d.Result.Category, cli.FormatConfidence(d.Result.Confidence), reason)
	}
	return w.Flush()
}
