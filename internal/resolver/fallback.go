package resolver

import (
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

// ResolveMinComplexity assigns the work center's minimum-complexity ("C0")
// order within the imputation's project, preferring the record's own vertex.
func ResolveMinComplexity(c *Catalog, imp model.Imputation) Resolution {
	res := Resolution{Tier: model.TierMinComplexity}

	area, ok := c.Area(imp.WorkCenter)
	opMinC := strings.TrimSpace(area.MinComplexityOperation)
	if !ok || opMinC == "" {
		res.warn("C0: no minimum-complexity operation defined for work center %q", imp.WorkCenter)
		return res
	}

	project, ok := c.MapProject(imp.Project)
	if !ok {
		res.info("C0: no SAP project mapped for project %q", imp.Project)
		return res
	}

	orders := filter(c.ProjectOrders(project), func(o model.SapOrder) bool {
		return o.OperationActivity == opMinC
	})

	vertex := normalizeCode(imp.Vertex)
	if pick, ok := smallestCar(filter(orders, func(o model.SapOrder) bool {
		return normalizeCode(o.Vertex) == vertex
	})); ok {
		res.hit(pick)
		res.info("C0: %s on vertex %s, order %d (%s)", opMinC, vertex, pick.ID, pick.OrderNumber)
		return res
	}

	if pick, ok := smallestCar(orders); ok {
		res.hit(pick)
		res.info("C0: %s on any vertex, order %d (%s)", opMinC, pick.ID, pick.OrderNumber)
		return res
	}

	res.info("C0: no order with activity %s in project %s", opMinC, project)
	return res
}

// ResolveCatchAll assigns the generic "out of system" placeholder order.
// A miss here means the imputation will be discarded; the orchestrator
// reports that as the single warning for the record.
func ResolveCatchAll(c *Catalog, placeholder string, _ model.Imputation) Resolution {
	res := Resolution{Tier: model.TierCatchAll}

	order, _, ok := newestWhere(c.ActiveOrders(), func(o model.SapOrder) bool {
		return o.Operation == placeholder
	})
	if !ok {
		res.info("no active %q placeholder order", placeholder)
		return res
	}

	res.hit(order)
	res.info("assigned placeholder %s order %d (%s)", placeholder, order.ID, order.OrderNumber)
	return res
}
