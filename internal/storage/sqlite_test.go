package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/model"
	"github.com/mattn/go-sqlite3"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to create a run with matching decisions.
func createTestRun(startedAt time.Time, decisions int) (*model.Run, []model.Decision) {
	run := &model.Run{
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(2 * time.Second),
		RecordsPath: "platforms.json",
		MappingPath: "category-mapping.json",
	}

	out := make([]model.Decision, decisions)
	for i := range out {
		d := model.Decision{
			Index:       i,
			RecordID:    fmt.Sprintf("p%d", i+1),
			Name:        fmt.Sprintf("Platform %d", i+1),
			OldCategory: "chatbots",
			Result: model.Result{
				Category:   "chatbots-conversational-ai",
				Group:      "Conversational AI",
				Confidence: model.ConfidenceHigh,
				Score:      10,
				Sources:    []model.SourceTag{model.SourcePrimaryCategory},
			},
		}
		if i%2 == 1 {
			d.OldCategory = ""
			d.Result.Confidence = model.ConfidenceLow
			d.Result.Score = 4
			d.Result.NeedsReview = true
			d.Result.Reason = "low confidence score"
			d.Result.Sources = []model.SourceTag{model.DescriptionSource("chatbot")}
		}
		if d.Changed() {
			run.Recategorized++
		} else {
			run.Unchanged++
		}
		if d.Result.NeedsReview {
			run.ReviewCount++
		}
		out[i] = d
	}
	run.TotalRecords = decisions
	return run, out
}

func TestSQLiteStorage_SaveAndGetRun(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	started := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	run, decisions := createTestRun(started, 4)
	run.DryRun = true

	if err := store.SaveRun(ctx, run, decisions); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if run.ID == "" {
		t.Fatal("SaveRun() did not assign an ID")
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if !got.StartedAt.Equal(run.StartedAt) || !got.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("GetRun() times = %v..%v, want %v..%v", got.StartedAt, got.FinishedAt, run.StartedAt, run.FinishedAt)
	}
	if got.TotalRecords != 4 || got.Recategorized != run.Recategorized || got.Unchanged != run.Unchanged {
		t.Errorf("GetRun() counts = %+v, want %+v", got, run)
	}
	if got.ReviewCount != 2 {
		t.Errorf("GetRun() ReviewCount = %d, want 2", got.ReviewCount)
	}
	if !got.DryRun {
		t.Error("GetRun() DryRun = false, want true")
	}
	if got.RecordsPath != "platforms.json" || got.MappingPath != "category-mapping.json" {
		t.Errorf("GetRun() paths = %q, %q", got.RecordsPath, got.MappingPath)
	}
}

func TestSQLiteStorage_SaveRunKeepsExplicitID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	run, decisions := createTestRun(time.Now(), 1)
	run.ID = "fixed-id"

	if err := store.SaveRun(ctx, run, decisions); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if run.ID != "fixed-id" {
		t.Errorf("SaveRun() changed ID to %q", run.ID)
	}

	// A second run with the same ID violates the primary key and must not
	// leave partial decisions behind.
	again, more := createTestRun(time.Now(), 3)
	again.ID = "fixed-id"
	if err := store.SaveRun(ctx, again, more); err == nil {
		t.Fatal("SaveRun() with duplicate ID should fail")
	}

	got, err := store.GetDecisions(ctx, "fixed-id", false)
	if err != nil {
		t.Fatalf("GetDecisions() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("GetDecisions() returned %d decisions, want 1", len(got))
	}
}

func TestSQLiteStorage_GetRunNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetRun(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_ListRuns(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		run, decisions := createTestRun(base.Add(time.Duration(i)*time.Hour), 2)
		if err := store.SaveRun(ctx, run, decisions); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		ids = append(ids, run.ID)
	}

	tests := []struct {
		name    string
		wantIDs []string
		limit   int
	}{
		{name: "all runs newest first", limit: 0, wantIDs: []string{ids[2], ids[1], ids[0]}},
		{name: "negative limit means all", limit: -1, wantIDs: []string{ids[2], ids[1], ids[0]}},
		{name: "limited", limit: 2, wantIDs: []string{ids[2], ids[1]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.ListRuns(ctx, tt.limit)
			if err != nil {
				t.Fatalf("ListRuns() error = %v", err)
			}
			if len(runs) != len(tt.wantIDs) {
				t.Fatalf("ListRuns() returned %d runs, want %d", len(runs), len(tt.wantIDs))
			}
			for i, run := range runs {
				if run.ID != tt.wantIDs[i] {
					t.Errorf("runs[%d].ID = %s, want %s", i, run.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestSQLiteStorage_GetDecisions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	run, decisions := createTestRun(time.Now(), 5)
	if err := store.SaveRun(ctx, run, decisions); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	all, err := store.GetDecisions(ctx, run.ID, false)
	if err != nil {
		t.Fatalf("GetDecisions() error = %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("GetDecisions() returned %d decisions, want 5", len(all))
	}
	for i, d := range all {
		if d.Index != i {
			t.Errorf("decision %d has index %d", i, d.Index)
		}
		if d.RecordID != decisions[i].RecordID || d.OldCategory != decisions[i].OldCategory {
			t.Errorf("decision %d = %+v, want %+v", i, d, decisions[i])
		}
		if len(d.Result.Sources) != 1 || d.Result.Sources[0] != decisions[i].Result.Sources[0] {
			t.Errorf("decision %d sources = %v, want %v", i, d.Result.Sources, decisions[i].Result.Sources)
		}
	}

	flagged, err := store.GetDecisions(ctx, run.ID, true)
	if err != nil {
		t.Fatalf("GetDecisions(reviewOnly) error = %v", err)
	}
	if len(flagged) != 2 {
		t.Fatalf("GetDecisions(reviewOnly) returned %d decisions, want 2", len(flagged))
	}
	for _, d := range flagged {
		if !d.Result.NeedsReview || d.Result.Reason != "low confidence score" {
			t.Errorf("flagged decision = %+v", d)
		}
	}
}

func TestSQLiteStorage_SaveRunValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	run, decisions := createTestRun(time.Now(), 2)
	decisions[1].Result.Group = ""

	err := store.SaveRun(ctx, run, decisions)
	if !errors.Is(err, ErrInvalidResult) {
		t.Errorf("SaveRun() error = %v, want ErrInvalidResult", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("invalid run was stored: %+v", runs)
	}
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	run, decisions := createTestRun(time.Now(), 1)
	if err := store.SaveRun(ctx, run, decisions); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if store.Path() != ":memory:" {
		t.Errorf("Path() = %q", store.Path())
	}
}

func TestSQLiteStorage_Migrations(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	// Test initial migration
	store1, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err2 := store1.Migrate(ctx); err2 != nil {
		t.Fatalf("Initial migration failed: %v", err2)
	}
	_ = store1.Close()

	// Test idempotency - running migrations again should not error
	store2, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer func() { _ = store2.Close() }()

	if err := store2.Migrate(ctx); err != nil {
		t.Fatalf("Repeated migration failed: %v", err)
	}

	// Verify database is functional after migrations
	run, decisions := createTestRun(time.Now(), 1)
	if err := store2.SaveRun(ctx, run, decisions); err != nil {
		t.Errorf("Database not functional after migration: %v", err)
	}
}

func TestSQLiteStorage_ConcurrentAccess(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	// Concurrent writers
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			run, decisions := createTestRun(time.Now().Add(time.Duration(id)*time.Minute), 3)
			if err := store.SaveRun(ctx, run, decisions); err != nil {
				errs <- err
			}
		}(i)
	}

	// Concurrent readers
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ListRuns(ctx, 10); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("ListRuns() returned %d runs, want 5", len(runs))
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: true},
		{name: "locked", err: sqlite3.Error{Code: sqlite3.ErrLocked}, want: true},
		{name: "wrapped busy", err: fmt.Errorf("failed to insert run: %w", sqlite3.Error{Code: sqlite3.ErrBusy}), want: true},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: false},
		{name: "other error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBusy(tt.err); got != tt.want {
				t.Errorf("IsBusy() = %v, want %v", got, tt.want)
			}
		})
	}
}
