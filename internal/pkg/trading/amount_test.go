package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare(0.1+0.2, 0.3))
	assert.Equal(t, 1, Compare(1.0000001, 1))
	assert.Equal(t, -1, Compare(1, 1.0000001))

	assert.True(t, GTE(0.1+0.2, 0.3))
	assert.True(t, LTE(0.1+0.2, 0.3))
}

func TestOrderQuantity(t *testing.T) {
	assert.Equal(t, 2.0, OrderQuantity(200, 100))
	// Truncation, never rounding up: 100/3 = 33.333333...
	assert.Equal(t, 0.333333, OrderQuantity(100, 300))
	assert.Equal(t, 0.0, OrderQuantity(0, 100))
	assert.Equal(t, 0.0, OrderQuantity(100, 0))
	assert.Equal(t, 0.0, OrderQuantity(-5, 100))
}

func TestOrderQuantityNeverOverspends(t *testing.T) {
	for _, alloc := range []float64{17.23, 999.99, 20000} {
		for _, price := range []float64{0.37, 3.1419, 187.1} {
			qty := OrderQuantity(alloc, price)
			assert.True(t, LTE(qty*price, alloc), "alloc=%v price=%v qty=%v", alloc, price, qty)
		}
	}
}

func TestCostAndProceeds(t *testing.T) {
	assert.Equal(t, 1000.4, Cost(10, 100, 0.4))
	assert.Equal(t, 999.6, Proceeds(10, 100, 0.4))
}

func TestWeightedAverage(t *testing.T) {
	assert.Equal(t, 65.0, WeightedAverage(10, 50, 30, 70))
	assert.Equal(t, 50.0, WeightedAverage(10, 50, 0, 0))
	assert.Equal(t, 0.0, WeightedAverage(0, 0, 0, 0))
}

func TestIdentityHolds(t *testing.T) {
	assert.True(t, IdentityHolds(100000, 100000))
	assert.True(t, IdentityHolds(100000, 100000.0001))
	assert.False(t, IdentityHolds(100000, 100001))
	assert.True(t, IdentityHolds(0.1+0.2, 0.3))
	assert.False(t, IdentityHolds(0, 1))
}
