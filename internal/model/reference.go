package model

import "strings"

// ExtraCycleMapping converts a work-center/task pair into an SAP operation-activity code.
type ExtraCycleMapping struct {
	AreaTask   string `db:"area_task"`
	WorkCenter string `db:"work_center"`
	Task       string `db:"task"`
	CNCType    string `db:"cnc_type"`
	OASAP      string `db:"oasap"`
}

// Split returns the operation and activity parts of the OASAP code.
// It reports false when the code is empty or has no separator.
func (m ExtraCycleMapping) Split() (operation, activity string, ok bool) {
	oa := strings.TrimSpace(m.OASAP)
	if oa == "" {
		return "", "", false
	}
	operation, activity, found := strings.Cut(oa, "-")
	if !found || operation == "" || activity == "" {
		return "", "", false
	}
	return operation, activity, true
}

// AreaDefinition holds the per-work-center fallback operations.
type AreaDefinition struct {
	WorkCenter              string `db:"work_center"`
	Area                    string `db:"area"`
	GeneralExpenseOperation string `db:"op_gg"`
	MinComplexityOperation  string `db:"op_min_c"`
}

// ProjectMapping translates an internal project code to the external SAP project.
type ProjectMapping struct {
	InternalProject string `db:"internal_project"`
	ExternalProject string `db:"external_project"`
}
