package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/testutil"
)

func pipelineCatalog(extra ...model.SapOrder) *Catalog {
	orders := append([]model.SapOrder{
		testutil.NewOrder(1).Operation("0900", "0900-GG01").Indirect("M1", "K1").Build(),
		testutil.NewOrder(2).Project("P1").Area("EA").Vertex("C").Car(7).Operation("0120", "0120-ZC11").Build(),
		testutil.NewOrder(3).Project("P1").Area("EA").Vertex("B").Car(2).Operation("0120", "0120-ZC11").Build(),
		testutil.NewOrder(4).Project("P1").Area("EA").Vertex("A").Car(1).Operation("0500", "C0").Build(),
	}, extra...)

	return NewCatalog(
		orders,
		[]model.AreaDefinition{{WorkCenter: "162", Area: "EA", GeneralExpenseOperation: "0900", MinComplexityOperation: "C0"}},
		[]model.ExtraCycleMapping{
			{WorkCenter: "162", Task: "77", OASAP: "0120-ZC11"},
			{WorkCenter: "162", Task: "90", OASAP: "0990-QQ00"},
		},
		[]model.ProjectMapping{{InternalProject: "1103", ExternalProject: "P1"}},
	)
}

func placeholder(id int64) model.SapOrder {
	return testutil.NewOrder(id).Operation(model.PlaceholderOperation, model.PlaceholderOperation).Build()
}

func TestPipeline_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		catalog    *Catalog
		imp        model.Imputation
		tier       model.Tier
		expectedID int64
		fallback   bool
		discarded  bool
	}{
		{
			name:       "GG first for indirect imputations",
			catalog:    pipelineCatalog(),
			imp:        testutil.NewImputation(1).Project("1103").WorkCenter("162").Vertex("C").Car("7").AssociatedTask("77").Indirect("M1", "K1").Build(),
			tier:       model.TierGeneralExpense,
			expectedID: 1,
		},
		{
			name:       "exact match",
			catalog:    pipelineCatalog(),
			imp:        testutil.NewImputation(1).Project("1103").WorkCenter("162").Vertex("C").Car("7").AssociatedTask("77").Build(),
			tier:       model.TierExact,
			expectedID: 2,
		},
		{
			name:       "proximity picks the nearest car above on the own vertex",
			catalog:    pipelineCatalog(),
			imp:        testutil.NewImputation(1).Project("1103").WorkCenter("162").Vertex("C").Car("5").AssociatedTask("77").Build(),
			tier:       model.TierProximity,
			expectedID: 2,
			fallback:   true,
		},
		{
			name:       "minimum complexity when no content match",
			catalog:    pipelineCatalog(),
			imp:        testutil.NewImputation(1).Project("1103").WorkCenter("162").Vertex("C").AssociatedTask("90").Build(),
			tier:       model.TierMinComplexity,
			expectedID: 4,
			fallback:   true,
		},
		{
			name:       "unmapped project skips straight to catch-all",
			catalog:    pipelineCatalog(placeholder(9)),
			imp:        testutil.NewImputation(1).Project("7777").WorkCenter("162").Vertex("C").AssociatedTask("77").Build(),
			tier:       model.TierCatchAll,
			expectedID: 9,
			fallback:   true,
		},
		{
			name:      "discarded without placeholder",
			catalog:   pipelineCatalog(),
			imp:       testutil.NewImputation(1).Project("7777").WorkCenter("162").Vertex("C").AssociatedTask("77").Build(),
			discarded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(tt.catalog, DefaultStrategies(DefaultOptions()))
			require.NoError(t, err)

			out := p.Resolve(tt.imp)
			testutil.Dump(t, "outcome", out)

			assert.Equal(t, tt.discarded, out.Discarded())
			assert.Equal(t, tt.fallback, out.Fallback())
			assert.NotEmpty(t, out.Trail)
			if !tt.discarded {
				assert.Equal(t, tt.tier, out.Tier)
				assert.Equal(t, tt.expectedID, out.Order.ID)
			}
		})
	}
}

func TestPipeline_RouteSkipsMinComplexity(t *testing.T) {
	var visited []model.Tier
	record := func(tier model.Tier, res Resolution) Strategy {
		return Strategy{Tier: tier, Resolve: func(*Catalog, model.Imputation) Resolution {
			visited = append(visited, tier)
			return res
		}}
	}

	p, err := NewPipeline(NewCatalog(nil, nil, nil, nil), []Strategy{
		record(model.TierExact, Resolution{Route: model.TierCatchAll}),
		record(model.TierProximity, Resolution{}),
		record(model.TierMinComplexity, Resolution{}),
		record(model.TierCatchAll, Resolution{Matched: true, Tier: model.TierCatchAll}),
	})
	require.NoError(t, err)

	out := p.Resolve(model.Imputation{})
	assert.True(t, out.Fallback())
	assert.Equal(t, []model.Tier{model.TierExact, model.TierCatchAll}, visited)
}

func TestNewPipeline_Validation(t *testing.T) {
	_, err := NewPipeline(nil, []Strategy{{Tier: model.TierExact}})
	assert.Error(t, err)

	dup := Strategy{Tier: model.TierExact, Resolve: MatchExact}
	_, err = NewPipeline(nil, []Strategy{dup, dup})
	assert.Error(t, err)

	p, err := NewPipeline(nil, DefaultStrategies(Options{}))
	require.NoError(t, err)
	assert.Equal(t, []model.Tier{
		model.TierGeneralExpense, model.TierExact, model.TierProximity, model.TierMinComplexity, model.TierCatchAll,
	}, p.Tiers())
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(
		[]model.SapOrder{testutil.NewOrder(1).Project("P1").Build(), testutil.NewOrder(2).Project("P1").Inactive().Build()},
		[]model.AreaDefinition{{WorkCenter: " 162 ", Area: "EA"}},
		[]model.ExtraCycleMapping{
			{WorkCenter: "162", Task: "77", OASAP: "0120-ZC11"},
			{WorkCenter: "162", Task: "77", OASAP: "0999-ZZ99"},
		},
		[]model.ProjectMapping{{InternalProject: "1103", ExternalProject: "P1"}, {InternalProject: "1104"}},
	)

	assert.Equal(t, 1, c.Size())
	assert.Len(t, c.ProjectOrders("P1"), 1)

	_, ok := c.Area("162")
	assert.True(t, ok)

	e, ok := c.ExtraCycle("162-77")
	require.True(t, ok)
	assert.Equal(t, "0120-ZC11", e.OASAP, "first mapping wins")

	_, ok = c.ExtraCycle("")
	assert.False(t, ok)

	p, ok := c.MapProject("1103")
	assert.True(t, ok)
	assert.Equal(t, "P1", p)

	_, ok = c.MapProject("1104")
	assert.False(t, ok, "blank external project is no mapping")
}
