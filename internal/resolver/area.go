package resolver

import "strings"

// AreaOverride widens the interchangeable area set for one project and work center.
type AreaOverride struct {
	Project    string   `mapstructure:"project"`
	WorkCenter string   `mapstructure:"work_center"`
	Areas      []string `mapstructure:"areas"`
}

// AreaRules decides which area codes are treated as interchangeable.
type AreaRules struct {
	General   [][]string     `mapstructure:"general"`
	Overrides []AreaOverride `mapstructure:"overrides"`
}

// DefaultAreaRules returns the production rule set: EA and EB are always
// interchangeable, and project 1103 on work center 162 may also draw from BA
// (material substitution agreed for that line only).
func DefaultAreaRules() AreaRules {
	return AreaRules{
		General: [][]string{{"EA", "EB"}},
		Overrides: []AreaOverride{
			{Project: "1103", WorkCenter: "162", Areas: []string{"EA", "EB", "BA"}},
		},
	}
}

// Equivalent reports whether areas a and b can stand in for each other for
// the given project and work center.
func (r AreaRules) Equivalent(a, b, project, workCenter string) bool {
	a, b = normalizeCode(a), normalizeCode(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	for _, group := range r.General {
		if contains(group, a) && contains(group, b) {
			return true
		}
	}

	project, workCenter = strings.TrimSpace(project), strings.TrimSpace(workCenter)
	for _, o := range r.Overrides {
		if o.Project != project || o.WorkCenter != workCenter {
			continue
		}
		if contains(o.Areas, a) && contains(o.Areas, b) {
			return true
		}
	}

	return false
}

func contains(group []string, code string) bool {
	for _, g := range group {
		if normalizeCode(g) == code {
			return true
		}
	}
	return false
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
