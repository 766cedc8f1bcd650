package testutil

import (
	"strconv"
	"time"

	"github.com/Veraticus/sapflow/internal/model"
)

// BaseTime is the creation timestamp fixtures start from. Later orders are
// made newer with Age.
var BaseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// OrderBuilder builds SAP orders fluently.
type OrderBuilder struct {
	order model.SapOrder
}

// NewOrder starts an active order with the given id. The order number and
// creation time derive from the id so fixtures stay deterministic.
func NewOrder(id int64) *OrderBuilder {
	return &OrderBuilder{order: model.SapOrder{
		ID:          id,
		OrderNumber: "10000" + itoa(id),
		Operation:   "0010",
		Active:      true,
		CreatedAt:   BaseTime,
	}}
}

// Project sets the external SAP project.
func (b *OrderBuilder) Project(p string) *OrderBuilder { b.order.Project = p; return b }

// Area sets the area code.
func (b *OrderBuilder) Area(a string) *OrderBuilder { b.order.Area = a; return b }

// Vertex sets the vertex letter.
func (b *OrderBuilder) Vertex(v string) *OrderBuilder { b.order.Vertex = v; return b }

// Car sets the car number.
func (b *OrderBuilder) Car(n int) *OrderBuilder { b.order.CarNumber = model.CarNumberOf(n); return b }

// Operation sets the operation and its activity code.
func (b *OrderBuilder) Operation(op, activity string) *OrderBuilder {
	b.order.Operation = op
	b.order.OperationActivity = activity
	return b
}

// Indirect sets the indirect motive and category.
func (b *OrderBuilder) Indirect(motive, category string) *OrderBuilder {
	b.order.IndirectMotive = motive
	b.order.IndirectCategory = category
	return b
}

// Age shifts the creation time by d from BaseTime.
func (b *OrderBuilder) Age(d time.Duration) *OrderBuilder {
	b.order.CreatedAt = BaseTime.Add(d)
	return b
}

// Inactive marks the order deactivated.
func (b *OrderBuilder) Inactive() *OrderBuilder { b.order.Active = false; return b }

// Build returns the order.
func (b *OrderBuilder) Build() model.SapOrder { return b.order }

// ImputationBuilder builds imputations fluently.
type ImputationBuilder struct {
	imp model.Imputation
}

// NewImputation starts an imputation of eight hours on BaseTime's day.
func NewImputation(id int64) *ImputationBuilder {
	return &ImputationBuilder{imp: model.Imputation{
		ID:           id,
		Date:         BaseTime.Truncate(24 * time.Hour),
		EmployeeCode: "E" + itoa(id),
		Hours:        8,
	}}
}

// Project sets the internal project code.
func (b *ImputationBuilder) Project(p string) *ImputationBuilder { b.imp.Project = p; return b }

// Vertex sets the vertex letter.
func (b *ImputationBuilder) Vertex(v string) *ImputationBuilder { b.imp.Vertex = v; return b }

// Car sets the raw car number.
func (b *ImputationBuilder) Car(c string) *ImputationBuilder { b.imp.CarNumber = c; return b }

// WorkCenter sets the work center.
func (b *ImputationBuilder) WorkCenter(wc string) *ImputationBuilder { b.imp.WorkCenter = wc; return b }

// Task sets the primary task.
func (b *ImputationBuilder) Task(t string) *ImputationBuilder { b.imp.Task = t; return b }

// AssociatedTask sets the associated task.
func (b *ImputationBuilder) AssociatedTask(t string) *ImputationBuilder {
	b.imp.AssociatedTask = t
	return b
}

// Indirect sets the indirect motive and category.
func (b *ImputationBuilder) Indirect(motive, category string) *ImputationBuilder {
	b.imp.IndirectMotive = motive
	b.imp.IndirectCategory = category
	return b
}

// Hours sets the reported hours.
func (b *ImputationBuilder) Hours(h float64) *ImputationBuilder { b.imp.Hours = h; return b }

// Employee sets the employee code.
func (b *ImputationBuilder) Employee(code string) *ImputationBuilder {
	b.imp.EmployeeCode = code
	return b
}

// Build returns the imputation.
func (b *ImputationBuilder) Build() model.Imputation { return b.imp }

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
