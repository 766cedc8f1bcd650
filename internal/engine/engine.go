// Package engine implements the assignment orchestrator that matches pending
// imputations to SAP orders and persists the results.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/resolver"
	"github.com/Veraticus/sapflow/internal/storage"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
	StatusFailed    = "failed"
)

// Summary counts what a run did.
type Summary struct {
	Status    string `json:"status"`
	Cleaned   int64  `json:"cleaned"`
	Pending   int    `json:"pending"`
	Assigned  int    `json:"assigned"`
	Fallback  int    `json:"fallback"`
	Discarded int    `json:"discarded"`
	Failed    int    `json:"failed"`
}

// Run is one execution of the orchestrator. Cancel may be called from any
// goroutine; it is honored between records.
type Run struct {
	StartedAt time.Time
	Trail     *Trail
	Reporter  Reporter
	ID        string
	canceled  atomic.Bool
}

// NewRun creates a run with an empty trail.
func NewRun(id string, reporter Reporter) *Run {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Run{
		ID:        id,
		Trail:     NewTrail(),
		Reporter:  reporter,
		StartedAt: time.Now(),
	}
}

// Cancel asks the run to stop before the next record.
func (r *Run) Cancel() {
	r.canceled.Store(true)
}

// Canceled reports whether Cancel was called.
func (r *Run) Canceled() bool {
	return r.canceled.Load()
}

// Config holds configuration options for the orchestrator.
type Config struct {
	// Strategies overrides the tier order. Nil means resolver.DefaultStrategies.
	Strategies []resolver.Strategy
	Resolver   resolver.Options
	Retry      common.RetryOptions
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Resolver: resolver.DefaultOptions(),
		Retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
		},
	}
}

// Orchestrator sequences the resolver tiers for every pending imputation.
type Orchestrator struct {
	store  Store
	config Config
}

// New creates an orchestrator with the default configuration.
func New(store Store) *Orchestrator {
	return NewWithConfig(store, DefaultConfig())
}

// NewWithConfig creates an orchestrator with custom configuration.
func NewWithConfig(store Store, config Config) *Orchestrator {
	return &Orchestrator{store: store, config: config}
}

// Execute runs Start → CleanPriorUnloaded → FetchPending → per record
// resolution → End. Per-record failures are logged and skipped; only
// infrastructure errors abort the run. Assignments committed before a
// cancellation or failure stay in place.
func (o *Orchestrator) Execute(ctx context.Context, run *Run) (Summary, error) {
	summary := Summary{Status: StatusRunning}
	defer run.Trail.Close()

	record := &storage.RunRecord{ID: run.ID, Status: StatusRunning, StartedAt: run.StartedAt}
	o.saveRun(ctx, record)

	summary, err := o.execute(ctx, run, summary)
	if err != nil {
		summary.Status = StatusFailed
		run.Trail.Appendf(LevelError, 0, "run failed: %v", err)
		common.LogError(err, "Assignment run failed", common.Fields{"run_id": run.ID})
	}

	record.Status = summary.Status
	record.FinishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	record.Cleaned = summary.Cleaned
	record.Pending = summary.Pending
	record.Assigned = summary.Assigned
	record.Fallback = summary.Fallback
	record.Discarded = summary.Discarded
	record.Failed = summary.Failed
	// The context may already be canceled; the summary row still gets written.
	o.saveRun(context.WithoutCancel(ctx), record)

	run.Reporter.End(summary)
	return summary, err
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, summary Summary) (Summary, error) {
	o.log(run, LevelInfo, 0, "🧹 Removing assignments not yet loaded into SAP...")
	deleted, err := o.store.DeleteUnloadedAssignments(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to clean prior assignments: %w", err)
	}
	summary.Cleaned = deleted
	o.log(run, LevelInfo, 0, "🗑️ %d assignments removed.", deleted)

	o.log(run, LevelInfo, 0, "🔎 Looking for pending imputations...")
	pending, err := o.store.GetPendingImputations(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch pending imputations: %w", err)
	}
	summary.Pending = len(pending)
	if len(pending) == 0 {
		o.log(run, LevelInfo, 0, "No pending imputations.")
		summary.Status = StatusCompleted
		return summary, nil
	}
	o.log(run, LevelInfo, 0, "Found %d pending imputations.", len(pending))

	pipeline, err := o.loadPipeline(ctx)
	if err != nil {
		return summary, err
	}

	run.Reporter.Begin(len(pending))
	for _, imp := range pending {
		if run.Canceled() || ctx.Err() != nil {
			o.log(run, LevelWarn, 0, "Run canceled; %d imputations left unprocessed.",
				summary.Pending-summary.Assigned-summary.Discarded-summary.Failed)
			summary.Status = StatusCanceled
			return summary, nil
		}

		o.processImputation(ctx, run, pipeline, imp, &summary)
		run.Reporter.Step(imp.ID)
	}

	summary.Status = StatusCompleted
	o.log(run, LevelInfo, 0, "🏁 Done: %d assigned (%d via fallback), %d discarded, %d failed.",
		summary.Assigned, summary.Fallback, summary.Discarded, summary.Failed)
	return summary, nil
}

// loadPipeline reads the reference tables once and builds the resolver pipeline.
func (o *Orchestrator) loadPipeline(ctx context.Context) (*resolver.Pipeline, error) {
	var catalog *resolver.Catalog
	err := common.WithRetry(ctx, func() error {
		var err error
		catalog, err = LoadCatalog(ctx, o.store)
		return err
	}, o.config.Retry)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	if catalog.Size() == 0 {
		slog.Warn("SAP order catalog has no active orders; every imputation will be discarded")
	}

	strategies := o.config.Strategies
	if strategies == nil {
		strategies = resolver.DefaultStrategies(o.config.Resolver)
	}
	return resolver.NewPipeline(catalog, strategies)
}

func (o *Orchestrator) processImputation(ctx context.Context, run *Run, pipeline *resolver.Pipeline, imp model.Imputation, summary *Summary) {
	o.log(run, LevelInfo, imp.ID, "🔧 Processing imputation %d...", imp.ID)

	outcome := pipeline.Resolve(imp)
	for _, note := range outcome.Trail {
		level := LevelInfo
		if note.Severity == resolver.SeverityWarn {
			level = LevelWarn
		}
		o.log(run, level, imp.ID, "%s", note.Message)
	}

	if outcome.Discarded() {
		summary.Discarded++
		o.log(run, LevelWarn, imp.ID, "Imputation %d DISCARDED: no SAP order and no placeholder order.", imp.ID)
		return
	}

	assignment := NewAssignment(imp, outcome)
	if err := o.store.InsertAssignment(ctx, &assignment); err != nil {
		summary.Failed++
		recErr := &common.RecordError{ImputationID: imp.ID, Err: err}
		o.log(run, LevelError, imp.ID, "Could not save assignment for imputation %d: %v", imp.ID, err)
		if !errors.Is(err, common.ErrDuplicateEntry) {
			common.LogError(recErr, "Failed to persist assignment", common.Fields{"run_id": run.ID})
		}
		return
	}

	summary.Assigned++
	if assignment.Fallback {
		summary.Fallback++
	}
	o.log(run, LevelInfo, imp.ID, "✅ Imputation %d assigned => SapOrder=%d via %s, fallback=%t.",
		imp.ID, outcome.Order.ID, outcome.Tier, assignment.Fallback)
}

// NewAssignment builds the row persisted for a resolved imputation.
func NewAssignment(imp model.Imputation, outcome resolver.Outcome) model.Assignment {
	return model.Assignment{
		ImputationID:      imp.ID,
		SapOrderID:        sql.NullInt64{Int64: outcome.Order.ID, Valid: true},
		EmployeeCode:      imp.EmployeeCode,
		Date:              imp.Date,
		HourType:          model.DefaultHourType,
		ProductionOrder:   outcome.Order.OrderNumber,
		Operation:         outcome.Operation,
		OperationActivity: outcome.OperationActivity,
		Hours:             model.RoundHours(imp.Hours),
		Tier:              outcome.Tier,
		Fallback:          outcome.Fallback(),
	}
}

// LoadCatalog reads every reference table into a resolver catalog.
func LoadCatalog(ctx context.Context, store Store) (*resolver.Catalog, error) {
	orders, err := store.GetSapOrders(ctx)
	if err != nil {
		return nil, err
	}
	areas, err := store.GetAreas(ctx)
	if err != nil {
		return nil, err
	}
	extraCycles, err := store.GetExtraCycles(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := store.GetProjectMappings(ctx)
	if err != nil {
		return nil, err
	}
	return resolver.NewCatalog(orders, areas, extraCycles, projects), nil
}

func (o *Orchestrator) log(run *Run, level Level, imputationID int64, format string, args ...any) {
	line := run.Trail.Appendf(level, imputationID, format, args...)
	run.Reporter.Line(line)

	switch level {
	case LevelWarn:
		slog.Warn(line.Message, "run_id", run.ID, "imputation_id", imputationID)
	case LevelError:
		slog.Error(line.Message, "run_id", run.ID, "imputation_id", imputationID)
	default:
		slog.Debug(line.Message, "run_id", run.ID, "imputation_id", imputationID)
	}
}

func (o *Orchestrator) saveRun(ctx context.Context, record *storage.RunRecord) {
	if err := o.store.SaveRun(ctx, record); err != nil {
		common.LogWarn("Failed to record run", common.Fields{"run_id": record.ID, "error": err.Error()})
	}
}
