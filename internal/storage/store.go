package storage

import (
	"context"

	"github.com/dyike/CortexHedge/models"
)

// RunStore persists hedge fund runs and their event streams.
type RunStore interface {
	CreateRun(ctx context.Context, req models.HedgeFundRequest) (*models.RunRecord, error)
	AppendRunEvent(ctx context.Context, runID string, ev models.Event) (int, error)
	FinishRun(ctx context.Context, runID, status string, result *models.HedgeFundResult, runErr string) error
}
