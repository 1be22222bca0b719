package storage

import (
	"context"

	"spikenet/internal/model"
)

// Store defines persistence operations for training runs and their history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveLayerStats(ctx context.Context, runID string, layers []model.LayerStats) error
	GetLayerStats(ctx context.Context, runID string) ([]model.LayerStats, bool, error)
}
