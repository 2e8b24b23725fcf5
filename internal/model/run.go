package model

import "time"

// Run is the persisted summary of one batch execution.
type Run struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	ID            string
	RecordsPath   string
	MappingPath   string
	TotalRecords  int
	Recategorized int
	Unchanged     int
	ReviewCount   int
	SkippedCount  int
	DryRun        bool
}

// NewRun builds a run summary from finished statistics.
func NewRun(stats *RunStats, startedAt, finishedAt time.Time) Run {
	return Run{
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		TotalRecords:  stats.TotalRecords,
		Recategorized: stats.Recategorized,
		Unchanged:     stats.Unchanged,
		ReviewCount:   stats.ReviewCount(),
		SkippedCount:  len(stats.Skipped),
	}
}
