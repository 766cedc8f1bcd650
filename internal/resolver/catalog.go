// Package resolver decides which SAP order, if any, a pending imputation belongs to.
//
// Every tier is a pure function over an immutable Catalog snapshot and a
// read-only model.Imputation. Tiers are wrapped as named Strategy values and
// run in order by a Pipeline, so the tier order and tie-break rules can be
// tested and replaced independently.
package resolver

import (
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

// Catalog is the reference data loaded once per run.
type Catalog struct {
	extraCycles map[string]model.ExtraCycleMapping
	areas       map[string]model.AreaDefinition
	projects    map[string]string
	byProject   map[string][]model.SapOrder
	orders      []model.SapOrder
}

// NewCatalog indexes reference rows. Inactive orders are dropped up front.
func NewCatalog(
	orders []model.SapOrder,
	areas []model.AreaDefinition,
	extraCycles []model.ExtraCycleMapping,
	projects []model.ProjectMapping,
) *Catalog {
	c := &Catalog{
		extraCycles: make(map[string]model.ExtraCycleMapping, len(extraCycles)),
		areas:       make(map[string]model.AreaDefinition, len(areas)),
		projects:    make(map[string]string, len(projects)),
		byProject:   make(map[string][]model.SapOrder),
	}

	for _, o := range orders {
		if !o.Active {
			continue
		}
		c.orders = append(c.orders, o)
		c.byProject[o.Project] = append(c.byProject[o.Project], o)
	}
	for _, a := range areas {
		c.areas[strings.TrimSpace(a.WorkCenter)] = a
	}
	for _, e := range extraCycles {
		key := e.AreaTask
		if key == "" {
			key = model.AreaTaskKey(e.WorkCenter, e.Task)
		}
		// First row wins, like a lookup by primary key.
		if _, exists := c.extraCycles[key]; !exists {
			c.extraCycles[key] = e
		}
	}
	for _, p := range projects {
		if p.ExternalProject == "" {
			continue
		}
		c.projects[strings.TrimSpace(p.InternalProject)] = p.ExternalProject
	}

	return c
}

// ActiveOrders returns every active order in the catalog.
func (c *Catalog) ActiveOrders() []model.SapOrder {
	return c.orders
}

// ProjectOrders returns the active orders of one external project.
func (c *Catalog) ProjectOrders(externalProject string) []model.SapOrder {
	return c.byProject[externalProject]
}

// Area returns the area definition of a work center.
func (c *Catalog) Area(workCenter string) (model.AreaDefinition, bool) {
	a, ok := c.areas[strings.TrimSpace(workCenter)]
	return a, ok
}

// ExtraCycle returns the extra-cycle mapping for an area-task key.
func (c *Catalog) ExtraCycle(areaTask string) (model.ExtraCycleMapping, bool) {
	if areaTask == "" {
		return model.ExtraCycleMapping{}, false
	}
	e, ok := c.extraCycles[areaTask]
	return e, ok
}

// MapProject translates an internal project code to its external SAP project.
// A missing mapping is a normal outcome and reports false.
func (c *Catalog) MapProject(internalProject string) (string, bool) {
	p, ok := c.projects[strings.TrimSpace(internalProject)]
	return p, ok
}

// Size reports how many active orders the catalog holds.
func (c *Catalog) Size() int {
	return len(c.orders)
}
