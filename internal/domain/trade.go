package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the immutable record of a matched execution between one
// buy order and one sell order. Commissions are stored per side
// (same rate today, separate fields to allow future asymmetry).
type Trade struct {
	ID             string
	BuyOrderID     string
	SellOrderID    string
	TickerID       int64
	Price          decimal.Decimal // the sell order's price
	Quantity       decimal.Decimal
	BuyCommission  decimal.Decimal // cents precision
	SellCommission decimal.Decimal // cents precision
	ExecutedAt     time.Time
}

// Value returns price × quantity at full precision.
func (t *Trade) Value() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}
