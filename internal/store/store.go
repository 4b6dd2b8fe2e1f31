package store

import (
	"context"
	"errors"

	"github.com/brandscope/brandscope-cli/internal/model"
)

// ErrRunNotFound is returned when a run ID does not exist. Both backends
// wrap it, so callers match with errors.Is regardless of driver.
var ErrRunNotFound = errors.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status    model.RunStatus `json:"status,omitempty"`
	BrandName string          `json:"brand_name,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// Store persists analysis runs. The pipeline itself never writes here;
// the CLI and HTTP layers own persistence.
type Store interface {
	CreateRun(ctx context.Context, input model.RunInput) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.PipelineRun) error
	MarkRunFailed(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
