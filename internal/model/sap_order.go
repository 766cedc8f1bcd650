package model

import (
	"database/sql"
	"time"
)

// PlaceholderOperation is the reserved operation code of the catch-all "out of system" order.
const PlaceholderOperation = "FUERA_SISTEMA"

// SapOrder is one schedulable operation from the SAP work-order catalog.
type SapOrder struct {
	CreatedAt         time.Time     `db:"created_at"`
	OrderNumber       string        `db:"order_number"`
	Project           string        `db:"project"`
	Area              string        `db:"area"`
	Vertex            string        `db:"vertex"`
	Operation         string        `db:"operation"`
	OperationActivity string        `db:"operation_activity"`
	IndirectMotive    string        `db:"indirect_motive"`
	IndirectCategory  string        `db:"indirect_category"`
	Description       string        `db:"description"`
	CarNumber         sql.NullInt64 `db:"car_number"`
	ID                int64         `db:"id"`
	Active            bool          `db:"active"`
}

// Car returns the order's car number and whether it has one.
func (o SapOrder) Car() (int, bool) {
	if !o.CarNumber.Valid {
		return 0, false
	}
	return int(o.CarNumber.Int64), true
}

// NewerThan reports whether o should win over other when both satisfy the same filter.
// The most recent creation timestamp wins; equal timestamps fall back to the higher id.
func (o SapOrder) NewerThan(other SapOrder) bool {
	if !o.CreatedAt.Equal(other.CreatedAt) {
		return o.CreatedAt.After(other.CreatedAt)
	}
	return o.ID > other.ID
}

// CarNumberOf is a convenience constructor for optional car numbers.
func CarNumberOf(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
