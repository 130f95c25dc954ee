// Package money compares and normalises monetary amounts at cent precision.
package money

import "github.com/shopspring/decimal"

// precision is the number of fractional digits kept for prices and bids.
const precision int32 = 2

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(precision)
}

// Round normalises v to cent precision.
func Round(v float64) float64 {
	f, _ := dec(v).Float64()
	return f
}

// Positive reports whether v is greater than zero after rounding.
func Positive(v float64) bool {
	return dec(v).IsPositive()
}

// Exceeds reports whether amount is strictly higher than current.
// A nil current counts as zero.
func Exceeds(amount float64, current *float64) bool {
	base := decimal.Zero
	if current != nil {
		base = dec(*current)
	}
	return dec(amount).GreaterThan(base)
}

// Compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
func Compare(a, b float64) int {
	return dec(a).Cmp(dec(b))
}
