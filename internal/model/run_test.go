package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRun(t *testing.T) {
	stats := NewRunStats([]string{"a"}, []string{"G"})
	stats.Add(decision(0, "1", "x", "a", "G", ConfidenceHigh, false))
	stats.Add(decision(1, "2", "a", "a", "G", ConfidenceLow, true))
	stats.Skip(2, "", "missing id")

	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	finished := started.Add(time.Minute)
	run := NewRun(stats, started, finished)

	assert.Equal(t, Run{
		StartedAt:     started,
		FinishedAt:    finished,
		TotalRecords:  2,
		Recategorized: 1,
		Unchanged:     1,
		ReviewCount:   1,
		SkippedCount:  1,
	}, run)
}

func TestDecision_Changed(t *testing.T) {
	assert.True(t, Decision{OldCategory: "a", Result: Result{Category: "b"}}.Changed())
	assert.True(t, Decision{Result: Result{Category: "b"}}.Changed())
	assert.False(t, Decision{OldCategory: "b", Result: Result{Category: "b"}}.Changed())
}

func TestDescriptionSource(t *testing.T) {
	assert.Equal(t, SourceTag("description_medical"), DescriptionSource("medical"))
}
