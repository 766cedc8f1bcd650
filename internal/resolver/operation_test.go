package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/testutil"
)

func TestResolveOperation(t *testing.T) {
	catalog := NewCatalog(
		[]model.SapOrder{
			testutil.NewOrder(1).Operation("3060", "3060-ZA01").Build(),
			testutil.NewOrder(2).Operation("3060", "3060-ZA02").Age(time.Hour).Build(),
			testutil.NewOrder(3).Operation("3986", "3986-ZX01").Build(),
		},
		nil,
		[]model.ExtraCycleMapping{
			{WorkCenter: "162", Task: "77", OASAP: "0120-ZC11"},
			{WorkCenter: "162", Task: "88", OASAP: "BROKEN"},
		},
		nil,
	)

	tests := []struct {
		name     string
		imp      model.Imputation
		code     string
		activity string
	}{
		{
			name:     "associated task through extra cycle keeps full OASAP",
			imp:      testutil.NewImputation(1).WorkCenter("162").Task("3060").AssociatedTask("77").Build(),
			code:     "0120",
			activity: "0120-ZC11",
		},
		{
			name:     "unmapped associated task falls back to primary task",
			imp:      testutil.NewImputation(1).WorkCenter("162").Task("3060").AssociatedTask("55").Build(),
			code:     "3060",
			activity: "3060-ZA02",
		},
		{
			name:     "malformed OASAP falls back to primary task",
			imp:      testutil.NewImputation(1).WorkCenter("162").Task("3060").AssociatedTask("88").Build(),
			code:     "3060",
			activity: "3060-ZA02",
		},
		{
			name:     "task 3986 resolves like any other task",
			imp:      testutil.NewImputation(1).WorkCenter("162").Task("3986").Build(),
			code:     "3986",
			activity: "3986-ZX01",
		},
		{
			name: "unknown task resolves nothing",
			imp:  testutil.NewImputation(1).WorkCenter("162").Task("1234").Build(),
		},
		{
			name: "no task resolves nothing",
			imp:  testutil.NewImputation(1).WorkCenter("162").Build(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := ResolveOperation(catalog, tt.imp)
			assert.Equal(t, tt.code, op.Code)
			assert.Equal(t, tt.activity, op.Activity)
			assert.Equal(t, tt.code != "", op.Resolved())
		})
	}
}
