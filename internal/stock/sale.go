package stock

import (
	"github.com/shopspring/decimal"

	"multipos/internal/apperr"
)

// Line is one priced sale line.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// Subtotal is unitPrice * quantity - discount.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Sub(l.Discount)
}

// Validate checks the numeric constraints of a sale line.
func (l Line) Validate() error {
	if l.Quantity < 1 || l.Quantity > MaxQuantity {
		return apperr.NewFieldValidation("quantity", "quantity out of range")
	}
	if err := ValidateMoney("unit_price", l.UnitPrice); err != nil {
		return err
	}
	if err := ValidateMoney("discount", l.Discount); err != nil {
		return err
	}
	amount := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	if amount.GreaterThanOrEqual(maxMoney) {
		return apperr.NewFieldValidation("quantity", "line amount out of range")
	}
	if l.Discount.GreaterThan(amount) {
		return apperr.NewFieldValidation("discount", "exceeds line amount")
	}
	return nil
}

// Totals sums the gross amount, the discounts and the final amount of lines.
// No taxes are applied. Use ValidateTotals before persisting the result.
func Totals(lines []Line) (gross, discount, final decimal.Decimal) {
	gross, discount, final = decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		gross = gross.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		discount = discount.Add(l.Discount)
		final = final.Add(l.Subtotal())
	}
	return gross, discount, final
}

// ValidateTotals rejects a gross amount that no money column can store.
func ValidateTotals(gross decimal.Decimal) error {
	if gross.GreaterThanOrEqual(maxMoney) {
		return apperr.NewFieldValidation("items", "sale total out of range")
	}
	return nil
}
