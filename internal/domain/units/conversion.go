// Package units converts item quantities between primary and secondary units.
//
// An item configured with a secondary unit stores its stock as two fields
// (primary, secondary) that jointly represent one conserved value measured
// in secondary-unit terms: primary*rate + secondary. Ledger deltas act on
// that composite value, never on the two fields independently.
package units

import (
	"khata/internal/core/id"
	"khata/internal/core/types"

	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when a conversion rate is zero or negative.
// Callers must treat the item as primary-unit-only in that case.
var ErrInvalidRate = errInvalidRate{}

type errInvalidRate struct{}

func (errInvalidRate) Error() string { return "conversion rate must be positive" }

// HasSecondaryUnit reports whether a line carries a usable secondary unit:
// a secondary unit reference, a conversion reference, and a positive rate.
func HasSecondaryUnit(secondaryUnitID, conversionID *id.ID, rate types.Quantity) bool {
	return secondaryUnitID != nil && !id.IsNil(*secondaryUnitID) &&
		conversionID != nil && !id.IsNil(*conversionID) &&
		rate.IsPositive()
}

// CompositeTotal returns primary*rate + secondary in secondary-unit terms.
func CompositeTotal(primary, secondary, rate types.Quantity) types.Quantity {
	return primary.Mul(rate).Add(secondary)
}

// SplitComposite decomposes a composite secondary-unit total back into
// (primary, secondary) via floor division and modulo against the rate.
// Splitting then recombining a non-negative total is lossless; negative
// totals keep the historical floor/mod pairing.
func SplitComposite(total, rate types.Quantity) (primary, secondary types.Quantity, err error) {
	if !rate.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidRate
	}
	primary = total.Div(rate).Floor()
	secondary = total.Mod(rate)
	return primary, secondary, nil
}
