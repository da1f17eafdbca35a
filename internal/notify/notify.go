// Package notify defines the notification sink the core calls after
// a mutating operation commits. Delivery transport is a collaborator
// concern; the core only ever invokes the Sink interface, strictly
// post-commit and outside any lock.
package notify

import (
	"github.com/efreitasn/coinex/internal/domain"
)

// Order event actions.
const (
	OrderCreated   = "created"
	OrderFilled    = "filled"
	OrderCancelled = "cancelled"
)

// Sink receives state-change notifications from the core. Orders and
// trades are handed over as private copies: implementations may
// retain them and read them from any goroutine.
type Sink interface {
	// OrderUpdated is called after an order is created, filled, or
	// cancelled. action is one of OrderCreated, OrderFilled,
	// OrderCancelled.
	OrderUpdated(order *domain.Order, action string)

	// TradeExecuted is called after a trade settles, with both
	// participating orders.
	TradeExecuted(trade *domain.Trade, buyOrder, sellOrder *domain.Order)

	// ProfileUpdated is called after a user's balance or holdings
	// change as part of settlement or cancellation.
	ProfileUpdated(userID int64)
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) OrderUpdated(*domain.Order, string)                        {}
func (NopSink) TradeExecuted(*domain.Trade, *domain.Order, *domain.Order) {}
func (NopSink) ProfileUpdated(int64)                                      {}
