package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Cents rounds v half away from zero to two decimals. NaN and infinities
// become zero.
func Cents(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

// RoundCents is Cents as a float64, for presentation and JSON.
func RoundCents(v float64) float64 {
	return Cents(v).InexactFloat64()
}

// EqualCents reports whether a and b agree to the cent.
func EqualCents(a, b float64) bool {
	return Cents(a).Equal(Cents(b))
}

// EqualCents reports whether two totals agree to the cent on every field.
func (t QuoteTotals) EqualCents(o QuoteTotals) bool {
	return EqualCents(t.TotalSystemCost, o.TotalSystemCost) &&
		EqualCents(t.TotalGlassCost, o.TotalGlassCost) &&
		EqualCents(t.TotalLaborCost, o.TotalLaborCost) &&
		EqualCents(t.GrandTotal, o.GrandTotal)
}

// EqualCents reports whether two breakdowns agree to the cent. Area is
// compared at the same precision.
func (b Breakdown) EqualCents(o Breakdown) bool {
	return EqualCents(b.SystemCost, o.SystemCost) &&
		EqualCents(b.GlassCost, o.GlassCost) &&
		EqualCents(b.LaborCost, o.LaborCost) &&
		EqualCents(b.BaseTotal, o.BaseTotal) &&
		EqualCents(b.Area, o.Area)
}

// FlatTax applies a single example tax rate to an amount. Rates outside
// [0, 100] yield no tax.
func FlatTax(amount, percent float64) float64 {
	if math.IsNaN(percent) || percent <= 0 || percent > 100 {
		return 0
	}
	return Cents(amount).Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
