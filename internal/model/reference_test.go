package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtraCycleMapping_Split(t *testing.T) {
	tests := []struct {
		oasap     string
		operation string
		activity  string
		ok        bool
	}{
		{oasap: "0120-ZC11", operation: "0120", activity: "ZC11", ok: true},
		{oasap: " 0300-ZA01 ", operation: "0300", activity: "ZA01", ok: true},
		{oasap: "0120", ok: false},
		{oasap: "-ZC11", ok: false},
		{oasap: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.oasap, func(t *testing.T) {
			op, act, ok := ExtraCycleMapping{OASAP: tt.oasap}.Split()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.operation, op)
			assert.Equal(t, tt.activity, act)
		})
	}
}

func TestSapOrder_NewerThan(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	older := SapOrder{ID: 9, CreatedAt: base}
	newer := SapOrder{ID: 1, CreatedAt: base.Add(time.Hour)}

	assert.True(t, newer.NewerThan(older))
	assert.False(t, older.NewerThan(newer))

	tie := SapOrder{ID: 10, CreatedAt: base}
	assert.True(t, tie.NewerThan(older), "equal timestamps fall back to the higher id")
	assert.False(t, older.NewerThan(tie))
}

func TestSapOrder_Car(t *testing.T) {
	n, ok := SapOrder{CarNumber: CarNumberOf(12)}.Car()
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = SapOrder{}.Car()
	assert.False(t, ok)
}

func TestTier_IsFallback(t *testing.T) {
	assert.False(t, TierGeneralExpense.IsFallback())
	assert.False(t, TierExact.IsFallback())
	assert.True(t, TierProximity.IsFallback())
	assert.True(t, TierMinComplexity.IsFallback())
	assert.True(t, TierCatchAll.IsFallback())
}
