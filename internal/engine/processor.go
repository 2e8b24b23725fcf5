// Package engine runs the classifier over a whole record snapshot and
// accumulates the run statistics.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/taxon/internal/classification"
	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/taxonomy"
	"golang.org/x/sync/errgroup"
)

// ProgressReporter receives one Add per record handled.
type ProgressReporter interface {
	Add(n int) error
}

// Options configures a batch run.
type Options struct {
	Progress ProgressReporter
	Workers  int // records are split into this many contiguous shards
}

// DefaultOptions runs single-threaded without progress output.
func DefaultOptions() Options {
	return Options{Workers: 1}
}

// Outcome is the result of a batch run.
type Outcome struct {
	Stats     *model.RunStats
	Decisions []model.Decision
}

// Processor applies a classifier to record snapshots.
type Processor struct {
	classifier *classification.Classifier
	table      *taxonomy.Table
	opts       Options
}

// NewProcessor creates a batch processor.
func NewProcessor(classifier *classification.Classifier, table *taxonomy.Table, opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Processor{
		classifier: classifier,
		table:      table,
		opts:       opts,
	}
}

// shard is one contiguous slice of the input and everything decided about it.
type shard struct {
	stats     *model.RunStats
	decisions []model.Decision
	start     int
	end       int
}

// Process classifies every record and rewrites Category and Group in place.
//
// Records are only mutated once every record has been classified, so a
// configuration error leaves the snapshot untouched. Malformed records are
// skipped, logged, and listed in the statistics.
func (p *Processor) Process(ctx context.Context, records []model.Record) (*Outcome, error) {
	shards := p.split(len(records))

	common.LogInfo("Starting recategorization", common.Fields{
		"records": len(records),
		"workers": len(shards),
	})

	g, gctx := errgroup.WithContext(ctx)
	for _, sh := range shards {
		g.Go(func() error {
			return p.classifyShard(gctx, records, sh)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := model.NewRunStats(p.table.Categories(), p.table.Groups())
	decisions := make([]model.Decision, 0, len(records))
	for _, sh := range shards {
		stats.Merge(sh.stats)
		decisions = append(decisions, sh.decisions...)
	}

	for _, d := range decisions {
		records[d.Index].Category = d.Result.Category
		records[d.Index].Group = d.Result.Group
	}

	common.LogInfo("Recategorization complete", common.Fields{
		"total":         stats.TotalRecords,
		"recategorized": stats.Recategorized,
		"unchanged":     stats.Unchanged,
		"manual_review": stats.ReviewCount(),
		"skipped":       len(stats.Skipped),
	})

	return &Outcome{Stats: stats, Decisions: decisions}, nil
}

// split cuts n records into at most Workers contiguous shards.
func (p *Processor) split(n int) []*shard {
	workers := p.opts.Workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	size := (n + workers - 1) / workers
	shards := make([]*shard, 0, workers)
	for start := 0; start < n || len(shards) == 0; start += size {
		end := min(start+size, n)
		shards = append(shards, &shard{
			start: start,
			end:   end,
			stats: model.NewRunStats(nil, nil),
		})
		if size == 0 {
			break
		}
	}
	return shards
}

func (p *Processor) classifyShard(ctx context.Context, records []model.Record, sh *shard) error {
	sh.decisions = make([]model.Decision, 0, sh.end-sh.start)

	for i := sh.start; i < sh.end; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec := records[i]
		if err := rec.Validate(); err != nil {
			common.LogWarn("Skipping malformed record", common.Fields{
				"index":     i,
				"record_id": rec.ID,
				"error":     err,
			})
			sh.stats.Skip(i, rec.ID, err.Error())
			p.progress()
			continue
		}

		result, err := p.classifier.Classify(rec)
		if err != nil {
			return fmt.Errorf("record %s: %w", rec.ID, err)
		}

		d := model.Decision{
			Index:       i,
			RecordID:    rec.ID,
			Name:        rec.Name,
			OldCategory: rec.Category,
			Result:      result,
		}
		sh.stats.Add(d)
		sh.decisions = append(sh.decisions, d)

		slog.Debug("Classified record",
			"record_id", rec.ID,
			"old_category", rec.Category,
			"new_category", result.Category,
			"score", result.Score,
			"confidence", result.Confidence)

		p.progress()
	}

	return nil
}

func (p *Processor) progress() {
	if p.opts.Progress == nil {
		return
	}
	if err := p.opts.Progress.Add(1); err != nil {
		common.LogDebug("progress update failed", common.Fields{"error": err})
	}
}
