// Package trading provides money and quantity arithmetic helpers.
//
// Ledger preconditions and the accounting identity compare float64 values
// that accumulate over long apply sequences; the comparisons go through
// shopspring/decimal so eligibility is never decided by a stray ULP.
package trading

import (
	"math"

	"github.com/shopspring/decimal"
)

const quantityPlaces = 6

var identityEps = decimal.NewFromFloat(1e-6)

func decFromFloat(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}

func decToFloat(val decimal.Decimal) float64 {
	f, _ := val.Float64()
	return f
}

func Compare(a, b float64) int {
	return decFromFloat(a).Cmp(decFromFloat(b))
}

func GTE(a, b float64) bool { return Compare(a, b) >= 0 }
func LTE(a, b float64) bool { return Compare(a, b) <= 0 }

// OrderQuantity converts a cash allocation into an order quantity at the
// given price, truncated to six decimal places so a buy never overspends
// the allocation through rounding.
func OrderQuantity(allocation, price float64) float64 {
	if allocation <= 0 || price <= 0 {
		return 0
	}
	qty := decFromFloat(allocation).Div(decFromFloat(price)).Truncate(quantityPlaces)
	return decToFloat(qty)
}

// Cost returns quantity*price+fee computed in decimal space.
func Cost(quantity, price, fee float64) float64 {
	total := decFromFloat(quantity).Mul(decFromFloat(price)).Add(decFromFloat(fee))
	return decToFloat(total)
}

// Proceeds returns quantity*price-fee computed in decimal space.
func Proceeds(quantity, price, fee float64) float64 {
	total := decFromFloat(quantity).Mul(decFromFloat(price)).Sub(decFromFloat(fee))
	return decToFloat(total)
}

// WeightedAverage returns the quantity-weighted average of two priced lots.
func WeightedAverage(qtyA, priceA, qtyB, priceB float64) float64 {
	totalQty := decFromFloat(qtyA).Add(decFromFloat(qtyB))
	if totalQty.IsZero() {
		return 0
	}
	notional := decFromFloat(qtyA).Mul(decFromFloat(priceA)).
		Add(decFromFloat(qtyB).Mul(decFromFloat(priceB)))
	return decToFloat(notional.Div(totalQty))
}

// IdentityHolds reports whether two sides of the accounting identity agree
// within a fixed epsilon relative to the magnitude of the balance.
func IdentityHolds(lhs, rhs float64) bool {
	l, r := decFromFloat(lhs), decFromFloat(rhs)
	diff := l.Sub(r).Abs()
	scale := decimal.NewFromInt(1)
	if abs := l.Abs(); abs.GreaterThan(scale) {
		scale = abs
	}
	return diff.LessThanOrEqual(identityEps.Mul(scale))
}
