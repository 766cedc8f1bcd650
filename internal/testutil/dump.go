package testutil

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump logs a readable rendering of values when a test fails. It is meant for
// resolver outcomes and catalog snapshots whose nested structs are hard to
// read in testify's diffs.
func Dump(t *testing.T, label string, values ...any) {
	t.Helper()
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("%s:\n%s", label, dumper.Sdump(values...))
		}
	})
}
