package domain

import "github.com/shopspring/decimal"

// Monetary and quantity fields use fixed precision throughout:
// prices carry up to 6 fractional digits, asset quantities up to 18,
// and cash/commission values are stored to 2 (cents).
const (
	PricePrecision    = 6
	QuantityPrecision = 18
	CurrencyPrecision = 2
)

// MinPrice is one unit of the price precision. MinAmount is the
// minimum order size, 1e-8: quantities carry 18 fractional digits,
// but orders smaller than a satoshi are rejected.
var (
	MinPrice  = decimal.New(1, -PricePrecision)
	MinAmount = decimal.New(1, -8)
)

// ValidScale reports whether d has no more than places fractional digits.
func ValidScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// Cents converts a decimal cash value to int64 cents, rounding half
// away from zero. User balances are stored in cents.
func Cents(d decimal.Decimal) int64 {
	return d.Round(CurrencyPrecision).Shift(CurrencyPrecision).IntPart()
}

// FromCents converts an int64 cents value back to a decimal cash value.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -CurrencyPrecision)
}
