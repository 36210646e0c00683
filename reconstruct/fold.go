package reconstruct

import (
	"math"

	"github.com/etnz/analytics"
	"github.com/etnz/analytics/date"
)

// DefaultTolerance is the relative difference accepted between a ledger's net
// quantity and the holding's current quantity.
const DefaultTolerance = 0.05

// Fold applies entries dated on or before on, in order, and returns the
// resulting quantity without clamping. entries must be sorted.
func Fold(entries []analytics.Entry, on date.Date) analytics.Quantity {
	var q analytics.Quantity
	for _, e := range entries {
		if e.Date.After(on) {
			break
		}
		q = apply(q, e)
	}
	return q
}

func apply(q analytics.Quantity, e analytics.Entry) analytics.Quantity {
	switch e.Type {
	case analytics.Buy, analytics.InitialBalance, analytics.TransferIn:
		return q.Add(e.Quantity)
	case analytics.Sell, analytics.Withdrawal, analytics.TransferOut:
		// sell magnitudes are sometimes recorded negative.
		return q.Sub(e.Quantity.Abs())
	case analytics.Dividend:
		if e.Reinvested {
			return q.Add(e.Quantity)
		}
	case analytics.Split:
		if e.Ratio.IsPositive() {
			return q.Mul(e.Ratio)
		}
	}
	return q
}

// clamp returns q or zero when q is negative.
func clamp(q analytics.Quantity) (analytics.Quantity, bool) {
	if q.IsNegative() {
		return analytics.Q(0), false
	}
	return q, true
}

// Complete reports whether a holding's ledger can be trusted: it either
// starts with an InitialBalance, or its net quantity reconciles with the
// holding's current quantity within tolerance.
func Complete(h analytics.Holding, entries []analytics.Entry, tolerance float64) bool {
	for _, e := range entries {
		if e.Type == analytics.InitialBalance {
			return true
		}
	}
	net := Fold(entries, date.Never).Float()
	current := h.Quantity.Float()
	if current == 0 {
		return math.Abs(net) <= 1e-9
	}
	return math.Abs(net-current) <= tolerance*math.Abs(current)
}
