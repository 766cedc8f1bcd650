package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAreaRules_Equivalent(t *testing.T) {
	rules := DefaultAreaRules()

	tests := []struct {
		name       string
		a, b       string
		project    string
		workCenter string
		expected   bool
	}{
		{name: "same code", a: "EA", b: "EA", expected: true},
		{name: "general group", a: "EA", b: "EB", expected: true},
		{name: "general group reversed", a: "EB", b: "EA", expected: true},
		{name: "case and spaces ignored", a: " ea", b: "Eb ", expected: true},
		{name: "unrelated areas", a: "EA", b: "BA", project: "2001", workCenter: "162", expected: false},
		{name: "override applies", a: "EA", b: "BA", project: "1103", workCenter: "162", expected: true},
		{name: "override covers EB too", a: "BA", b: "EB", project: "1103", workCenter: "162", expected: true},
		{name: "override needs matching work center", a: "EA", b: "BA", project: "1103", workCenter: "163", expected: false},
		{name: "override needs matching project", a: "EA", b: "BA", project: "1104", workCenter: "162", expected: false},
		{name: "empty area never matches", a: "", b: "", expected: false},
		{name: "one empty area", a: "EA", b: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rules.Equivalent(tt.a, tt.b, tt.project, tt.workCenter))
		})
	}
}

func TestAreaRules_Empty(t *testing.T) {
	var rules AreaRules
	assert.True(t, rules.Equivalent("EA", "EA", "", ""))
	assert.False(t, rules.Equivalent("EA", "EB", "", ""))
}
