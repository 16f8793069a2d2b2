package stock

import "github.com/shopspring/decimal"

// Status classifies available stock against a product's minimum.
type Status string

const (
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusInStock    Status = "IN_STOCK"
)

// Available returns quantity - reserved. The stored invariant keeps it >= 0.
func Available(quantity, reserved int) int {
	return quantity - reserved
}

// Classify maps available units and the reorder threshold to a Status.
func Classify(available, minStock int) Status {
	switch {
	case available <= 0:
		return StatusOutOfStock
	case available <= minStock:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// IsAlerting reports whether s should raise a low-stock alert.
func (s Status) IsAlerting() bool {
	return s == StatusLowStock || s == StatusOutOfStock
}

var hundred = decimal.NewFromInt(100)

// Margin is the markup of selling over cost as a percentage with one decimal.
// A zero cost yields zero. Negative margins are returned as is.
func Margin(cost, selling decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return selling.Sub(cost).Div(cost).Mul(hundred).Round(1)
}
