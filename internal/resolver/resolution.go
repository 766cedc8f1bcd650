package resolver

import (
	"fmt"

	"github.com/Veraticus/sapflow/internal/model"
)

// Severity classifies a decision-trail note.
type Severity int

// Note severities.
const (
	SeverityInfo Severity = iota
	SeverityWarn
)

// Note is one line of the decision trail.
type Note struct {
	Message  string
	Severity Severity
}

// Resolution is what a single tier decided for an imputation.
type Resolution struct {
	Order             model.SapOrder
	Operation         string
	OperationActivity string
	Tier              model.Tier
	// Route names the tier to continue with after a miss. Empty means the
	// next strategy in pipeline order.
	Route   model.Tier
	Notes   []Note
	Matched bool
}

func (r *Resolution) info(format string, args ...any) {
	r.Notes = append(r.Notes, Note{Message: fmt.Sprintf(format, args...), Severity: SeverityInfo})
}

func (r *Resolution) warn(format string, args ...any) {
	r.Notes = append(r.Notes, Note{Message: fmt.Sprintf(format, args...), Severity: SeverityWarn})
}

// hit marks the resolution as matched to order, carrying the order's own operation codes.
func (r *Resolution) hit(order model.SapOrder) {
	r.Matched = true
	r.Order = order
	r.Operation = order.Operation
	r.OperationActivity = order.OperationActivity
}

// Outcome is the result of running the full pipeline for one imputation.
type Outcome struct {
	Resolution
	Trail []Note
}

// Discarded reports whether no tier produced an order.
func (o Outcome) Discarded() bool {
	return !o.Matched
}

// Fallback reports whether a tier beyond GG/exact produced the order.
func (o Outcome) Fallback() bool {
	return o.Matched && o.Tier.IsFallback()
}
