package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

const (
	vertexLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	unrankedVertex = 9999
	activityFamily = 2
)

// VertexRank is the position of a single-letter vertex in A–Z. Anything else ranks last.
func VertexRank(v string) int {
	if len(v) != 1 {
		return unrankedVertex
	}
	if i := strings.Index(vertexLetters, strings.ToUpper(v)); i >= 0 {
		return i
	}
	return unrankedVertex
}

// VertexPriority lists the vertices to try for a record: its own vertex, then
// lower-ranked vertices walking down, then higher-ranked vertices walking up.
// For C that is C, B, A, D, E, ..., Z.
func VertexPriority(current string) []string {
	current = normalizeCode(current)
	rank := VertexRank(current)

	out := make([]string, 0, len(vertexLetters)+1)
	out = append(out, current)
	for i := len(vertexLetters) - 1; i >= 0; i-- {
		if i < rank {
			out = append(out, vertexLetters[i:i+1])
		}
	}
	for i := 0; i < len(vertexLetters); i++ {
		if i > rank && rank != unrankedVertex {
			out = append(out, vertexLetters[i:i+1])
		}
	}
	return out
}

// PickByCar chooses the nearest order by car number: the largest car strictly
// below the record's, otherwise the smallest strictly above. Without a record
// car number the smallest car wins. Orders without a car number are only
// eligible in that last case, and rank after numbered ones.
func PickByCar(orders []model.SapOrder, car int, hasCar bool) (model.SapOrder, bool) {
	if len(orders) == 0 {
		return model.SapOrder{}, false
	}
	if !hasCar {
		return smallestCar(orders)
	}

	var (
		below, above       model.SapOrder
		hasBelow, hasAbove bool
	)
	for _, o := range orders {
		c, ok := o.Car()
		if !ok {
			continue
		}
		switch {
		case c < car:
			bc, _ := below.Car()
			if !hasBelow || c > bc || (c == bc && o.NewerThan(below)) {
				below, hasBelow = o, true
			}
		case c > car:
			ac, _ := above.Car()
			if !hasAbove || c < ac || (c == ac && o.NewerThan(above)) {
				above, hasAbove = o, true
			}
		}
	}

	if hasBelow {
		return below, true
	}
	return above, hasAbove
}

// ResolveProximity searches the imputation's project for the nearest
// compatible order when no exact match exists.
func ResolveProximity(c *Catalog, rules AreaRules, imp model.Imputation) Resolution {
	res := Resolution{Tier: model.TierProximity}

	project, ok := c.MapProject(imp.Project)
	if !ok {
		res.warn("proximity: no SAP project mapped for project %q", imp.Project)
		res.Route = model.TierCatchAll
		return res
	}
	orders := c.ProjectOrders(project)
	if len(orders) == 0 {
		res.warn("proximity: no active orders for SAP project %s", project)
		res.Route = model.TierCatchAll
		return res
	}

	if area, ok := c.Area(imp.WorkCenter); ok && strings.TrimSpace(area.Area) != "" {
		orders = filter(orders, func(o model.SapOrder) bool {
			return rules.Equivalent(area.Area, o.Area, imp.Project, imp.WorkCenter)
		})
		if len(orders) == 0 {
			res.info("proximity: no orders in an area equivalent to %s", area.Area)
			return res
		}
	}

	candidates, descr := narrowByContent(c, imp, orders)
	if len(candidates) == 0 {
		res.info("proximity: no orders with %s", descr)
		return res
	}

	car, hasCar := imp.ParsedCarNumber()
	if !hasCar && strings.TrimSpace(imp.CarNumber) != "" {
		res.info("proximity: car number %q is not numeric, ignoring it", imp.CarNumber)
	}

	for _, v := range VertexPriority(imp.Vertex) {
		sameVertex := filter(candidates, func(o model.SapOrder) bool {
			return normalizeCode(o.Vertex) == v
		})
		if pick, ok := PickByCar(sameVertex, car, hasCar); ok {
			res.hit(pick)
			res.info("proximity: %s, vertex=%s, order %d (%s) car=%d", descr, v, pick.ID, pick.OrderNumber, pick.CarNumber.Int64)
			return res
		}
	}

	res.info("proximity: no suitable vertex/car for %s", descr)
	return res
}

// narrowByContent keeps the orders that do the same work as the imputation.
// It returns the candidates and a description of the criterion for the trail.
func narrowByContent(c *Catalog, imp model.Imputation, orders []model.SapOrder) ([]model.SapOrder, string) {
	if !imp.HasAssociatedTask() {
		task := strings.TrimSpace(imp.Task)
		if task == "" {
			return nil, "no task"
		}
		return filter(orders, func(o model.SapOrder) bool { return o.Operation == task }), fmt.Sprintf("operation %s", task)
	}

	mapping, ok := c.ExtraCycle(imp.AreaTaskKey())
	oa := strings.TrimSpace(mapping.OASAP)
	if !ok || oa == "" {
		return nil, "extra cycle without OASAP"
	}

	same := filter(orders, func(o model.SapOrder) bool { return o.OperationActivity == oa })
	if len(same) > 0 {
		return same, fmt.Sprintf("activity %s", oa)
	}

	family := oa
	if len(oa) > activityFamily {
		family = oa[len(oa)-activityFamily:]
	}
	related := filter(orders, func(o model.SapOrder) bool {
		return o.OperationActivity != "" && strings.HasSuffix(o.OperationActivity, family)
	})
	if len(related) == 0 {
		return nil, fmt.Sprintf("activity family %s", family)
	}

	variants := make([]string, 0, len(related))
	seen := make(map[string]bool)
	for _, o := range related {
		if !seen[o.OperationActivity] {
			seen[o.OperationActivity] = true
			variants = append(variants, o.OperationActivity)
		}
	}
	sort.Strings(variants)
	first := variants[0]

	return filter(related, func(o model.SapOrder) bool { return o.OperationActivity == first }),
		fmt.Sprintf("activity family %s -> %s", family, first)
}
