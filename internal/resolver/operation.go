package resolver

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

// Operation is the (operation, operation-activity) pair derived for an imputation.
type Operation struct {
	Code     string
	Activity string
	Source   string
}

// Resolved reports whether both parts are present.
func (o Operation) Resolved() bool {
	return o.Code != "" && o.Activity != ""
}

// ResolveOperation derives the operation pair characterizing the imputation's work.
//
// An associated task always goes through the extra-cycle mapping first; the
// primary task is only consulted when that lookup yields nothing. The
// historical order that swapped task fields before lookup is not supported.
func ResolveOperation(c *Catalog, imp model.Imputation) Operation {
	if imp.HasAssociatedTask() {
		if op, ok := operationFromExtraCycle(c, imp); ok {
			return op
		}
	}

	task := strings.TrimSpace(imp.Task)
	if task == "" {
		return Operation{}
	}
	order, _, ok := newestWhere(c.ActiveOrders(), func(o model.SapOrder) bool {
		return o.Operation == task
	})
	if !ok {
		return Operation{}
	}
	return Operation{
		Code:     order.Operation,
		Activity: order.OperationActivity,
		Source:   fmt.Sprintf("task %s via order %d", task, order.ID),
	}
}

// operationFromExtraCycle returns the mapped operation for the imputation's
// area-task key. The activity keeps the full OASAP code because that is how
// the catalog stores operation activities.
func operationFromExtraCycle(c *Catalog, imp model.Imputation) (Operation, bool) {
	key := imp.AreaTaskKey()
	mapping, ok := c.ExtraCycle(key)
	if !ok {
		return Operation{}, false
	}
	code, _, ok := mapping.Split()
	if !ok {
		return Operation{}, false
	}
	return Operation{
		Code:     code,
		Activity: strings.TrimSpace(mapping.OASAP),
		Source:   fmt.Sprintf("extra cycle %s", key),
	}, true
}
