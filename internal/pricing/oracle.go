// Package pricing provides the price oracle used to value holdings
// for display. Prices never feed into matching.
package pricing

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Oracle looks up the current reference price for a symbol.
type Oracle interface {
	CurrentPrice(symbol string) decimal.Decimal
}

// StaticOracle serves prices from a fixed table, falling back to a
// default for unknown symbols.
type StaticOracle struct {
	mu       sync.RWMutex
	prices   map[string]decimal.Decimal
	fallback decimal.Decimal
}

// defaultPrices is the built-in reference table.
var defaultPrices = map[string]string{
	"BTC":   "42580",
	"ETH":   "2150",
	"XRP":   "0.62",
	"BNB":   "320",
	"ADA":   "0.52",
	"SOL":   "98",
	"DOT":   "7.25",
	"DOGE":  "0.15",
	"AVAX":  "42",
	"LTC":   "85",
	"MATIC": "0.85",
	"ATOM":  "12",
	"LINK":  "16",
	"UNI":   "7.5",
	"XLM":   "0.13",
	"ETC":   "28",
	"ALGO":  "0.18",
	"VET":   "0.03",
	"XTZ":   "1.05",
	"FIL":   "5.8",
}

// NewStaticOracle creates a StaticOracle with the built-in table.
func NewStaticOracle() *StaticOracle {
	prices := make(map[string]decimal.Decimal, len(defaultPrices))
	for symbol, p := range defaultPrices {
		prices[symbol] = decimal.RequireFromString(p)
	}
	return &StaticOracle{
		prices:   prices,
		fallback: decimal.NewFromInt(100),
	}
}

// CurrentPrice returns the table price for symbol, or the fallback if
// the symbol is unknown.
func (o *StaticOracle) CurrentPrice(symbol string) decimal.Decimal {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if p, ok := o.prices[symbol]; ok {
		return p
	}
	return o.fallback
}

// SetPrice overrides the table price for a symbol.
func (o *StaticOracle) SetPrice(symbol string, price decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.prices[symbol] = price
}
