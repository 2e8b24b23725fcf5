// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/taxon/internal/model"
)

// HistoryStore defines the contract for persisting run history.
type HistoryStore interface {
	SaveRun(ctx context.Context, run *model.Run, decisions []model.Decision) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	GetRun(ctx context.Context, id string) (*model.Run, error)
	GetDecisions(ctx context.Context, runID string, reviewOnly bool) ([]model.Decision, error)

	Migrate(ctx context.Context) error
	Close() error
}
