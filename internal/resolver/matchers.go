package resolver

import (
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

// MatchGeneralExpense resolves indirect imputations to the work center's
// general-expense order. It runs before operation derivation because an
// indirect classification overrides task-based matching.
func MatchGeneralExpense(c *Catalog, imp model.Imputation) Resolution {
	res := Resolution{Tier: model.TierGeneralExpense}
	if !imp.IsIndirect() {
		return res
	}

	area, ok := c.Area(imp.WorkCenter)
	if !ok || strings.TrimSpace(area.GeneralExpenseOperation) == "" {
		res.warn("GG: no general-expense operation defined for work center %q", imp.WorkCenter)
		return res
	}

	opGG := area.GeneralExpenseOperation
	order, n, ok := newestWhere(c.ActiveOrders(), func(o model.SapOrder) bool {
		return o.IndirectMotive == imp.IndirectMotive &&
			o.IndirectCategory == imp.IndirectCategory &&
			o.Operation == opGG
	})
	if !ok {
		res.info("GG: no order for motive=%s category=%s operation=%s", imp.IndirectMotive, imp.IndirectCategory, opGG)
		return res
	}

	res.hit(order)
	if n > 1 {
		res.info("GG: %d candidates, newest order %d chosen", n, order.ID)
	}
	res.info("GG match: order %d (%s) motive=%s category=%s", order.ID, order.OrderNumber, imp.IndirectMotive, imp.IndirectCategory)
	return res
}

// ExactKey holds the four keys an exact match must agree on.
type ExactKey struct {
	Project           string
	Vertex            string
	OperationActivity string
	CarNumber         int
	HasCarNumber      bool
}

// FindExact returns the newest active order matching every key.
func FindExact(orders []model.SapOrder, key ExactKey) (model.SapOrder, int, bool) {
	vertex := normalizeCode(key.Vertex)
	return newestWhere(orders, func(o model.SapOrder) bool {
		if o.Project != key.Project || normalizeCode(o.Vertex) != vertex || o.OperationActivity != key.OperationActivity {
			return false
		}
		car, ok := o.Car()
		if ok != key.HasCarNumber {
			return false
		}
		return !ok || car == key.CarNumber
	})
}

// MatchExact derives the imputation's operation, maps its project and looks
// for an order agreeing on project, vertex, car number and operation activity.
func MatchExact(c *Catalog, imp model.Imputation) Resolution {
	res := Resolution{Tier: model.TierExact}

	op := ResolveOperation(c, imp)
	if !op.Resolved() {
		res.info("no operation derivable from task=%q associated=%q, falling back", imp.Task, imp.AssociatedTask)
		return res
	}
	res.Operation, res.OperationActivity = op.Code, op.Activity
	res.info("operation %s / %s from %s", op.Code, op.Activity, op.Source)

	project, ok := c.MapProject(imp.Project)
	if !ok {
		res.warn("no SAP project mapped for project %q", imp.Project)
		res.Route = model.TierCatchAll
		return res
	}

	car, hasCar := imp.ParsedCarNumber()
	order, n, ok := FindExact(c.ProjectOrders(project), ExactKey{
		Project:           project,
		Vertex:            imp.Vertex,
		OperationActivity: op.Activity,
		CarNumber:         car,
		HasCarNumber:      hasCar,
	})
	if !ok {
		res.info("no exact order for project=%s vertex=%s car=%s activity=%s", project, imp.Vertex, imp.CarNumber, op.Activity)
		return res
	}

	res.Matched = true
	res.Order = order
	if n > 1 {
		res.warn("duplicate: %d exact candidates, newest order %d chosen", n, order.ID)
	}
	res.info("exact match: order %d (%s)", order.ID, order.OrderNumber)
	return res
}
