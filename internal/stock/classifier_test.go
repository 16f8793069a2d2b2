package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusOutOfStock, Classify(0, 5))
	assert.Equal(t, StatusOutOfStock, Classify(-1, 0))
	assert.Equal(t, StatusLowStock, Classify(5, 5))
	assert.Equal(t, StatusLowStock, Classify(1, 5))
	assert.Equal(t, StatusInStock, Classify(6, 5))
	assert.Equal(t, StatusInStock, Classify(1, 0))
}

func TestStatus_IsAlerting(t *testing.T) {
	assert.True(t, StatusOutOfStock.IsAlerting())
	assert.True(t, StatusLowStock.IsAlerting())
	assert.False(t, StatusInStock.IsAlerting())
}

func TestMargin(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		cost, selling string
		want          string
	}{
		{"10.00", "15.00", "50"},
		{"3.00", "4.00", "33.3"},
		{"0", "9.99", "0"},
		{"20.00", "15.00", "-25"},
		{"7.50", "7.50", "0"},
	}
	for _, tt := range tests {
		got := Margin(d(tt.cost), d(tt.selling))
		assert.True(t, got.Equal(d(tt.want)), "Margin(%s, %s) = %s, want %s", tt.cost, tt.selling, got, tt.want)
	}
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, 7, Available(10, 3))
	assert.Equal(t, 7, Snapshot{Quantity: 10, ReservedQty: 3}.Available())
}
