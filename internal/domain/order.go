package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether an order buys or sells the ticker.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderStatus represents the lifecycle state of an order. The only
// legal transitions are open -> filled and open -> cancelled.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents a buy or sell instruction submitted by a user.
// Once the status is terminal, price, amount, and filled quantity
// are never touched again.
type Order struct {
	ID             string
	UserID         int64
	TickerID       int64
	Side           OrderSide
	Price          decimal.Decimal // 6 fractional digits
	Amount         decimal.Decimal // 18 fractional digits
	FilledQuantity decimal.Decimal
	Status         OrderStatus
	OpenedAt       time.Time
	FilledAt       *time.Time
	CancelledAt    *time.Time
}

// Remaining returns the unfilled quantity, amount - filled_quantity.
func (o *Order) Remaining() decimal.Decimal {
	return o.Amount.Sub(o.FilledQuantity)
}

// Total returns price × amount, the cash value the order commands.
func (o *Order) Total() decimal.Decimal {
	return o.Price.Mul(o.Amount)
}

// IsOpen reports whether the order can still match or be cancelled.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}
