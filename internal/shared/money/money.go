// Package money holds the rounding and summing rules shared by every
// payroll figure.
package money

import "github.com/shopspring/decimal"

const Scale = 2

var Hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to 2 decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percent returns round(d * pct / 100).
func Percent(d decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return Round(d.Mul(pct).Div(Hundred))
}

// NonNegative clamps negatives to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
