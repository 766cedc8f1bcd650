// Package importer loads imputations and reference tables from CSV exports.
package importer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/sapflow/internal/model"
)

// Store is the persistence the importer writes to.
type Store interface {
	SaveImputations(ctx context.Context, imps []model.Imputation) (int, error)
	SaveSapOrders(ctx context.Context, orders []model.SapOrder) error
	GetSapOrders(ctx context.Context) ([]model.SapOrder, error)
	DeactivateProjectOrders(ctx context.Context, projects []string) (int64, error)
	SaveAreas(ctx context.Context, areas []model.AreaDefinition) error
	SaveExtraCycles(ctx context.Context, mappings []model.ExtraCycleMapping) error
	GetExtraCycles(ctx context.Context) ([]model.ExtraCycleMapping, error)
	SaveProjectMappings(ctx context.Context, mappings []model.ProjectMapping) error
}

// Options tunes row filtering and normalization.
type Options struct {
	// TaskAliases rewrites task codes on import, e.g. a retired code to its replacement.
	TaskAliases map[string]string
	// Now is the clock used to drop future-dated rows. Defaults to time.Now.
	Now func() time.Time
	// Factory, when set, keeps only rows whose factory column matches.
	Factory string
}

// Result reports what an import did.
type Result struct {
	Read     int
	Imported int
	Skipped  int
	// Deactivated counts orders retired by a project replace.
	Deactivated int64
}

// Importer reads CSV exports into the store.
type Importer struct {
	store Store
	opts  Options
}

// New creates an importer.
func New(store Store, opts Options) *Importer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	aliases := make(map[string]string, len(opts.TaskAliases))
	for from, to := range opts.TaskAliases {
		aliases[strings.TrimSpace(from)] = strings.TrimSpace(to)
	}
	opts.TaskAliases = aliases
	return &Importer{store: store, opts: opts}
}

func (im *Importer) aliasTask(task string) string {
	if to, ok := im.opts.TaskAliases[task]; ok {
		return to
	}
	return task
}

func skipRow(kind string, line int, reason string) {
	slog.Debug("Skipping row", "kind", kind, "line", line, "reason", reason)
}
