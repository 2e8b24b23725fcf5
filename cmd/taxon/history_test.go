package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRuns(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	started := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	for i, dryRun := range []bool{false, true} {
		run := model.Run{
			StartedAt:     started.Add(time.Duration(i) * time.Hour),
			FinishedAt:    started.Add(time.Duration(i)*time.Hour + 1500*time.Millisecond),
			TotalRecords:  3,
			Recategorized: 2,
			Unchanged:     1,
			ReviewCount:   1,
			DryRun:        dryRun,
		}
		require.NoError(t, db.Storage.SaveRun(ctx, &run, nil))
	}

	runs, err := db.Storage.ListRuns(ctx, 0)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRuns(&out, runs))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3, "header plus one line per run")
	assert.Contains(t, string(lines[1]), "(dry run)", "newest run is listed first")
	assert.NotContains(t, string(lines[2]), "(dry run)")
	assert.Contains(t, out.String(), "1.5s")
}

func TestPrintRuns_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRuns(&out, nil))
	assert.Contains(t, out.String(), "No runs recorded yet")
}

func TestPrintRunDetail(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	started := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	run := model.Run{
		StartedAt:     started,
		FinishedAt:    started.Add(time.Second),
		RecordsPath:   "platforms.json",
		MappingPath:   "category-mapping.json",
		TotalRecords:  2,
		Recategorized: 2,
		ReviewCount:   1,
	}
	decisions := []model.Decision{
		{
			RecordID:    "p1",
			Name:        "ChatPal",
			OldCategory: "chatbot",
			Result: model.Result{
				Category:   "chatbots-conversational-ai",
				Group:      testutil.GroupCustomer,
				Confidence: model.ConfidenceHigh,
				Score:      10,
			},
		},
		{
			RecordID: "p3",
			Name:     "Mystery Box",
			Index:    1,
			Result: model.Result{
				Category:    "ai-assistants-copilots",
				Group:       testutil.GroupBusiness,
				Confidence:  model.ConfidenceLow,
				Reason:      "no mapping matched any signal",
				NeedsReview: true,
			},
		},
	}
	require.NoError(t, db.Storage.SaveRun(ctx, &run, decisions))

	flagged, err := db.Storage.GetDecisions(ctx, run.ID, true)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRunDetail(&out, &run, flagged))
	assert.Contains(t, out.String(), "Run "+run.ID)
	assert.Contains(t, out.String(), "Mapping: category-mapping.json")
	assert.Contains(t, out.String(), "Review: 1")
	assert.Contains(t, out.String(), model.NoPreviousCategory, "missing old category is shown as the none bucket")
	assert.NotContains(t, out.String(), "ChatPal", "only flagged decisions were requested")

	all, err := db.Storage.GetDecisions(ctx, run.ID, false)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, printRunDetail(&out, &run, all))
	assert.Contains(t, out.String(), "ChatPal")
	assert.Contains(t, out.String(), "chatbot")

	out.Reset()
	require.NoError(t, printRunDetail(&out, &run, nil))
	assert.Contains(t, out.String(), "No decisions to show")
}
