// Package stock holds the inventory ledger rules: how a movement changes the
// on-hand quantity of a record and how availability, status and margin are
// derived. Everything here is pure; persistence applies the results.
package stock

import (
	"strings"

	"multipos/internal/apperr"
)

// MovementType is the kind of a stock movement.
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementTransfer   MovementType = "TRANSFER"
	MovementReturn     MovementType = "RETURN"
	MovementDamage     MovementType = "DAMAGE"
)

// MovementTypes lists every supported type, in display order.
var MovementTypes = []MovementType{
	MovementIn, MovementOut, MovementAdjustment, MovementTransfer, MovementReturn, MovementDamage,
}

// ParseMovementType accepts the type name case-insensitively.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", apperr.NewValidation("unknown movement type")
	}
	return t, nil
}

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementTransfer, MovementReturn, MovementDamage:
		return true
	}
	return false
}

// Snapshot is the part of an inventory record the evaluator needs.
type Snapshot struct {
	Quantity    int
	ReservedQty int
}

// Available is quantity minus reserved units.
func (s Snapshot) Available() int {
	return Available(s.Quantity, s.ReservedQty)
}

// Movement is a requested change to one inventory record.
type Movement struct {
	Type     MovementType
	Quantity int
	Reason   string
}

// Evaluate computes the on-hand quantity that results from applying m to s.
//
// Checks run in a fixed order: reason, numeric range for the type, then
// available stock for the outbound types. ADJUSTMENT sets an absolute level
// and may not go below the reserved quantity. No result passes MaxQuantity.
func Evaluate(s Snapshot, m Movement) (int, error) {
	if strings.TrimSpace(m.Reason) == "" {
		return 0, apperr.NewValidation("reason required")
	}

	switch m.Type {
	case MovementIn, MovementReturn:
		if m.Quantity < 1 || m.Quantity > MaxQuantity {
			return 0, apperr.NewValidation("quantity out of range")
		}
		return AddQuantity(s.Quantity, m.Quantity)

	case MovementOut, MovementDamage, MovementTransfer:
		if m.Quantity < 1 || m.Quantity > MaxQuantity {
			return 0, apperr.NewValidation("quantity out of range")
		}
		if err := CheckAvailable(s, m.Quantity); err != nil {
			return 0, err
		}
		return s.Quantity - m.Quantity, nil

	case MovementAdjustment:
		if m.Quantity < 0 || m.Quantity > MaxQuantity {
			return 0, apperr.NewValidation("quantity out of range")
		}
		if m.Quantity < s.ReservedQty {
			return 0, apperr.NewValidation("quantity below reserved stock")
		}
		return m.Quantity, nil

	default:
		return 0, apperr.NewValidation("unknown movement type")
	}
}

// CheckAvailable returns an InsufficientStockError when requested exceeds the
// available units of s.
func CheckAvailable(s Snapshot, requested int) error {
	if available := s.Available(); requested > available {
		return apperr.NewInsufficientStock(requested, available)
	}
	return nil
}
