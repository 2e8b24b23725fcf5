// Package storage provides the run history persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/taxon/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidRun    = errors.New("invalid run")
	ErrInvalidResult = errors.New("invalid decision")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun validates a run summary before it is stored.
func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		return fmt.Errorf("%w: finished before it started", ErrInvalidRun)
	}
	if run.TotalRecords < 0 || run.Recategorized+run.Unchanged != run.TotalRecords {
		return fmt.Errorf("%w: recategorized + unchanged must equal total", ErrInvalidRun)
	}
	return nil
}

// validateDecision validates one decision before it is stored.
func validateDecision(d *model.Decision) error {
	if strings.TrimSpace(d.RecordID) == "" {
		return fmt.Errorf("%w: missing record id", ErrInvalidResult)
	}
	if strings.TrimSpace(d.Result.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidResult)
	}
	if strings.TrimSpace(d.Result.Group) == "" {
		return fmt.Errorf("%w: missing group", ErrInvalidResult)
	}
	switch d.Result.Confidence {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
	default:
		return fmt.Errorf("%w: confidence %q", ErrInvalidResult, d.Result.Confidence)
	}
	return nil
}
