package model

import (
	"database/sql"
	"time"
)

// DefaultHourType is the hour type written for every assignment before export mapping.
const DefaultHourType = "Production Direct Hour"

// Tier names the resolution step that produced an assignment.
type Tier string

// Resolution tiers, in pipeline order.
const (
	TierGeneralExpense Tier = "gg"
	TierExact          Tier = "exact"
	TierProximity      Tier = "proximity"
	TierMinComplexity  Tier = "min_complexity"
	TierCatchAll       Tier = "catch_all"
)

// IsFallback reports whether the tier is beyond the direct GG/exact matches.
func (t Tier) IsFallback() bool {
	switch t {
	case TierGeneralExpense, TierExact:
		return false
	default:
		return true
	}
}

// Assignment links one imputation to the SAP order it was resolved to.
type Assignment struct {
	Date              time.Time     `db:"date"`
	CreatedAt         time.Time     `db:"created_at"`
	EmployeeCode      string        `db:"employee_code"`
	HourType          string        `db:"hour_type"`
	ProductionOrder   string        `db:"production_order"`
	Operation         string        `db:"operation"`
	OperationActivity string        `db:"operation_activity"`
	Tier              Tier          `db:"tier"`
	SapOrderID        sql.NullInt64 `db:"sap_order_id"`
	ID                int64         `db:"id"`
	ImputationID      int64         `db:"imputation_id"`
	Hours             float64       `db:"hours"`
	Loaded            bool          `db:"loaded"`
	Fallback          bool          `db:"fallback"`
}

// PendingImputation summarizes an imputation that still needs assignment.
type PendingImputation struct {
	Date         time.Time    `db:"date" json:"date"`
	EmployeeCode string       `db:"employee_code" json:"employee_code"`
	Project      string       `db:"project" json:"project"`
	Vertex       string       `db:"vertex" json:"vertex"`
	Loaded       sql.NullBool `db:"loaded" json:"-"`
	ID           int64        `db:"id" json:"id"`
	Hours        float64      `db:"hours" json:"hours"`
}
