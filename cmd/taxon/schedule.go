package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/taxon/internal/cli"
	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func scheduleCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Re-run the batch on a cron schedule",
		Long: `Run the full recategorization on a standard five-field cron expression
(schedule.cron, default "0 3 * * *") until interrupted. A failed run is
logged and the schedule keeps going.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if expr, _ := cmd.Flags().GetString("cron"); cmd.Flags().Changed("cron") {
				viper.Set(config.KeyScheduleCron, expr)
			}

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Scheduled with %q; press Ctrl+C to stop", settings.ScheduleCron)))
			return runSchedule(cmd.Context(), settings, opts)
		},
	}

	cmd.Flags().String("cron", "", "Cron expression (default from schedule.cron)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record runs in the history database")
	cmd.Flags().BoolVar(&opts.noReport, "no-report", false, "Skip the Markdown report")
	addPathFlags(cmd)

	return cmd
}

// runSchedule blocks until ctx is done, running one batch per tick.
func runSchedule(ctx context.Context, settings *config.Settings, opts runOptions) error {
	schedule, err := config.ParseSchedule(settings.ScheduleCron)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(schedule, cron.FuncJob(func() {
		slog.Info("Scheduled run starting", "cron", settings.ScheduleCron)
		stats, err := executeRun(ctx, settings, opts)
		if err != nil {
			common.LogError(err, "Scheduled run failed", common.Fields{"cron": settings.ScheduleCron})
			return
		}
		slog.Info("Scheduled run finished",
			"total", stats.TotalRecords,
			"recategorized", stats.Recategorized,
			"manual_review", stats.ReviewCount(),
			"next", schedule.Next(time.Now()))
	}))

	c.Start()
	slog.Info("Scheduler started", "cron", settings.ScheduleCron, "next", schedule.Next(time.Now()))

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("Scheduler stopped")
	return nil
}
