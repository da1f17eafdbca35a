package domain

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Asset represents a user's holding in a single ticker. LockedAmount
// is the portion reserved against open SELL orders. Invariant:
// 0 <= LockedAmount <= Amount.
type Asset struct {
	UserID       int64
	TickerID     int64
	Amount       decimal.Decimal
	LockedAmount decimal.Decimal
	Mu           sync.Mutex // per-asset lock for amount mutations
}

// Available returns the unreserved portion of the holding.
func (a *Asset) Available() decimal.Decimal {
	return a.Amount.Sub(a.LockedAmount)
}
