package engine

import (
	"context"

	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/storage"
)

// Store is the persistence the orchestrator needs for one run.
type Store interface {
	DeleteUnloadedAssignments(ctx context.Context) (int64, error)
	GetPendingImputations(ctx context.Context) ([]model.Imputation, error)
	InsertAssignment(ctx context.Context, a *model.Assignment) error
	SaveRun(ctx context.Context, run *storage.RunRecord) error

	// Reference data, read once per run.
	GetSapOrders(ctx context.Context) ([]model.SapOrder, error)
	GetAreas(ctx context.Context) ([]model.AreaDefinition, error)
	GetExtraCycles(ctx context.Context) ([]model.ExtraCycleMapping, error)
	GetProjectMappings(ctx context.Context) ([]model.ProjectMapping, error)
}

// Reporter receives progress while a run executes.
type Reporter interface {
	Begin(total int)
	Line(line Line)
	Step(imputationID int64)
	End(summary Summary)
}

// NopReporter ignores every callback.
type NopReporter struct{}

// Begin implements Reporter.
func (NopReporter) Begin(int) {}

// Line implements Reporter.
func (NopReporter) Line(Line) {}

// Step implements Reporter.
func (NopReporter) Step(int64) {}

// End implements Reporter.
func (NopReporter) End(Summary) {}
