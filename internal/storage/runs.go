package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/model"
	"github.com/google/uuid"
)

// SaveRun stores a run summary and its decisions in one transaction.
// A run without an ID gets a fresh UUID, which is written back to run.ID.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run, decisions []model.Decision) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	for i := range decisions {
		if err := validateDecision(&decisions[i]); err != nil {
			return fmt.Errorf("decision at index %d: %w", i, err)
		}
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, records_path, mapping_path,
			total_records, recategorized, unchanged, review_count, skipped_count, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.RecordsPath, run.MappingPath,
		run.TotalRecords, run.Recategorized, run.Unchanged, run.ReviewCount, run.SkippedCount, run.DryRun)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (run_id, record_index, record_id, name, old_category, new_category,
			group_name, confidence, score, needs_review, reason, sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range decisions {
		sources, marshalErr := json.Marshal(d.Result.Sources)
		if marshalErr != nil {
			err = fmt.Errorf("failed to encode sources for %s: %w", d.RecordID, marshalErr)
			return err
		}
		_, err = stmt.ExecContext(ctx,
			run.ID, d.Index, d.RecordID, d.Name, nullString(d.OldCategory), d.Result.Category,
			d.Result.Group, string(d.Result.Confidence), d.Result.Score, d.Result.NeedsReview,
			nullString(d.Result.Reason), string(sources))
		if err != nil {
			return fmt.Errorf("failed to insert decision for %s: %w", d.RecordID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero or less returns all runs.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, records_path, mapping_path, total_records,
			recategorized, unchanged, review_count, skipped_count, dry_run
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, records_path, mapping_path, total_records,
			recategorized, unchanged, review_count, skipped_count, dry_run
		FROM runs
		WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return run, err
}

// GetDecisions returns the decisions of a run in record order.
// With reviewOnly set, only decisions flagged for manual review are returned.
func (s *SQLiteStorage) GetDecisions(ctx context.Context, runID string, reviewOnly bool) ([]model.Decision, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_index, record_id, name, old_category, new_category, group_name,
			confidence, score, needs_review, reason, sources
		FROM decisions
		WHERE run_id = ? AND (? = 0 OR needs_review = 1)
		ORDER BY record_index`, runID, reviewOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decisions []model.Decision
	for rows.Next() {
		var (
			d          model.Decision
			old        sql.NullString
			reason     sql.NullString
			confidence string
			sources    string
		)
		if err := rows.Scan(&d.Index, &d.RecordID, &d.Name, &old, &d.Result.Category, &d.Result.Group,
			&confidence, &d.Result.Score, &d.Result.NeedsReview, &reason, &sources); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.OldCategory = old.String
		d.Result.Reason = reason.String
		d.Result.Confidence = model.Confidence(confidence)
		if err := json.Unmarshal([]byte(sources), &d.Result.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources for %s: %w", d.RecordID, err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}
	return decisions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run         model.Run
		recordsPath sql.NullString
		mappingPath sql.NullString
		startedAt   time.Time
		finishedAt  time.Time
	)
	err := row.Scan(&run.ID, &startedAt, &finishedAt, &recordsPath, &mappingPath, &run.TotalRecords,
		&run.Recategorized, &run.Unchanged, &run.ReviewCount, &run.SkippedCount, &run.DryRun)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = startedAt
	run.FinishedAt = finishedAt
	run.RecordsPath = recordsPath.String
	run.MappingPath = mappingPath.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
