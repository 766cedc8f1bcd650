// Package model defines the core data structures for the sapflow application.
package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Imputation is one reported unit of labor hours waiting to be matched to a SAP order.
// Values are read-only snapshots; the resolver never mutates them.
type Imputation struct {
	Date             time.Time `db:"date"`
	ImportedAt       time.Time `db:"imported_at"`
	EmployeeCode     string    `db:"employee_code"`
	TimeSlot         string    `db:"time_slot"`
	Project          string    `db:"project"`
	Vertex           string    `db:"vertex"`
	CarNumber        string    `db:"car_number"`
	WorkCenter       string    `db:"work_center"`
	Task             string    `db:"task"`
	AssociatedTask   string    `db:"associated_task"`
	IndirectMotive   string    `db:"indirect_motive"`
	IndirectCategory string    `db:"indirect_category"`
	AreaTask         string    `db:"area_task"`
	ImputationType   string    `db:"imputation_type"`
	ID               int64     `db:"id"`
	Hours            float64   `db:"hours"`
}

// HasAssociatedTask reports whether the imputation carries a secondary task.
func (i Imputation) HasAssociatedTask() bool {
	return strings.TrimSpace(i.AssociatedTask) != ""
}

// IsIndirect reports whether both indirect-cause codes are populated.
func (i Imputation) IsIndirect() bool {
	return strings.TrimSpace(i.IndirectMotive) != "" && strings.TrimSpace(i.IndirectCategory) != ""
}

// AreaTaskKey returns the stored area-task key, or derives it from the work
// center and associated task when the import left it empty.
func (i Imputation) AreaTaskKey() string {
	if i.AreaTask != "" {
		return i.AreaTask
	}
	if !i.HasAssociatedTask() {
		return ""
	}
	return AreaTaskKey(i.WorkCenter, i.AssociatedTask)
}

// ParsedCarNumber returns the car number as an integer. A blank or
// non-numeric value reports false and means "no car-number constraint".
func (i Imputation) ParsedCarNumber() (int, bool) {
	raw := strings.TrimSpace(i.CarNumber)
	if raw == "" {
		return 0, false
	}
	// Spreadsheet exports sometimes render integers as "12.0".
	raw = strings.TrimSuffix(raw, ".0")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AreaTaskKey builds the composite work-center/task key used by extra-cycle mappings.
func AreaTaskKey(workCenter, task string) string {
	return strings.TrimSpace(workCenter) + "-" + strings.TrimSpace(task)
}

// RoundHours rounds an hour amount to two decimals.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
