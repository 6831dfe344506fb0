package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RoundCents rounds v to two decimals, half away from zero.
// v must be finite.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// AddCents adds two cent amounts without binary floating point drift.
func AddCents(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// SumByMethod folds the ledger into per-method totals in insertion order,
// with the same arithmetic RecordPayment uses. Entries whose method is not
// in methods are skipped.
func SumByMethod(payments []Payment, methods MethodSet) Totals {
	totals := methods.ZeroTotals()

	for _, p := range payments {
		if !methods.Contains(p.Method) {
			continue
		}

		totals[p.Method] = AddCents(totals[p.Method], p.Amount)
	}

	return totals
}
