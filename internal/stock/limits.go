package stock

import (
	"github.com/shopspring/decimal"

	"multipos/internal/apperr"
)

// MaxQuantity bounds a single movement, a sale line and an on-hand level.
const MaxQuantity = 1<<31 - 1

// maxMoney is the first value a decimal(12,2) column cannot hold.
var maxMoney = decimal.New(1, 10)

// AddQuantity returns a+b, or a ValidationError when either operand is
// negative or the sum would pass MaxQuantity.
func AddQuantity(a, b int) (int, error) {
	if a < 0 || b < 0 || a > MaxQuantity || b > MaxQuantity-a {
		return 0, apperr.NewFieldValidation("quantity", "quantity out of range")
	}
	return a + b, nil
}

// ValidateMoney checks that d fits a stored money column: not negative, at
// most two decimal places and below 10^10.
func ValidateMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apperr.NewFieldValidation(field, "must not be negative")
	}
	if !d.Equal(d.Round(2)) {
		return apperr.NewFieldValidation(field, "at most 2 decimal places")
	}
	if d.GreaterThanOrEqual(maxMoney) {
		return apperr.NewFieldValidation(field, "out of range")
	}
	return nil
}
