package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/testutil"
)

func TestNewest(t *testing.T) {
	tests := []struct {
		name       string
		orders     []model.SapOrder
		expectedID int64
		count      int
	}{
		{
			name: "latest timestamp wins",
			orders: []model.SapOrder{
				testutil.NewOrder(1).Age(2 * time.Hour).Build(),
				testutil.NewOrder(2).Age(time.Hour).Build(),
			},
			expectedID: 1,
			count:      2,
		},
		{
			name: "equal timestamps go to the highest id",
			orders: []model.SapOrder{
				testutil.NewOrder(4).Build(),
				testutil.NewOrder(9).Build(),
				testutil.NewOrder(6).Build(),
			},
			expectedID: 9,
			count:      3,
		},
		{
			name:       "single candidate",
			orders:     []model.SapOrder{testutil.NewOrder(5).Build()},
			expectedID: 5,
			count:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, n, ok := Newest(tt.orders)
			require.True(t, ok)
			assert.Equal(t, tt.expectedID, order.ID)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestNewest_Empty(t *testing.T) {
	_, n, ok := Newest(nil)
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestSmallestCar(t *testing.T) {
	orders := []model.SapOrder{
		testutil.NewOrder(1).Build(),
		testutil.NewOrder(2).Car(12).Build(),
		testutil.NewOrder(3).Car(4).Build(),
		testutil.NewOrder(4).Car(4).Age(time.Minute).Build(),
	}

	pick, ok := smallestCar(orders)
	require.True(t, ok)
	assert.Equal(t, int64(4), pick.ID, "lowest car, newest among equals")

	pick, ok = smallestCar(orders[:1])
	require.True(t, ok)
	assert.Equal(t, int64(1), pick.ID, "unnumbered orders are still eligible alone")

	_, ok = smallestCar(nil)
	assert.False(t, ok)
}
