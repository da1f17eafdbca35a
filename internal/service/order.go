package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/engine"
	"github.com/efreitasn/coinex/internal/notify"
	"github.com/efreitasn/coinex/internal/store"
)

// PlaceOrderRequest represents the input for order placement.
type PlaceOrderRequest struct {
	UserID int64
	Symbol string
	Side   domain.OrderSide
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// OrderService handles order placement, cancellation, and listing.
// All notifications are dispatched after the engine's atomic section
// has committed, outside any lock.
type OrderService struct {
	matcher *engine.Matcher
	users   *store.UserStore
	tickers *store.TickerStore
	orders  *store.OrderStore
	sink    notify.Sink
	logger  *slog.Logger
}

// NewOrderService creates an OrderService with the given dependencies.
func NewOrderService(
	matcher *engine.Matcher,
	users *store.UserStore,
	tickers *store.TickerStore,
	orders *store.OrderStore,
	sink notify.Sink,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		matcher: matcher,
		users:   users,
		tickers: tickers,
		orders:  orders,
		sink:    sink,
		logger:  logger,
	}
}

// PlaceOrder validates the request, reserves funds or holdings,
// creates the order, and runs the matching engine. When settlement
// fails the returned order is still placed (OPEN) and the error
// describes the failure.
func (s *OrderService) PlaceOrder(req PlaceOrderRequest) (*domain.Order, error) {
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{Field: "side", Message: "must be BUY or SELL"}
	}
	if req.Price.LessThan(domain.MinPrice) {
		return nil, &domain.ValidationError{Field: "price", Message: "must be at least " + domain.MinPrice.String()}
	}
	if !domain.ValidScale(req.Price, domain.PricePrecision) {
		return nil, &domain.ValidationError{Field: "price", Message: "must have at most 6 decimal places"}
	}
	if req.Amount.LessThan(domain.MinAmount) {
		return nil, &domain.ValidationError{Field: "amount", Message: "must be at least " + domain.MinAmount.String()}
	}
	if !domain.ValidScale(req.Amount, domain.QuantityPrecision) {
		return nil, &domain.ValidationError{Field: "amount", Message: "must have at most 18 decimal places"}
	}

	if !s.users.Exists(req.UserID) {
		return nil, domain.ErrUserNotFound
	}
	ticker, err := s.tickers.GetBySymbol(req.Symbol)
	if err != nil {
		return nil, err
	}

	order, trade, err := s.matcher.PlaceOrder(req.UserID, ticker.ID, req.Side, req.Price, req.Amount)
	if err != nil {
		if order != nil {
			// Settlement aborted; the order itself was placed and
			// stays on the book.
			s.sink.OrderUpdated(order, notify.OrderCreated)
		}
		return order, err
	}

	if trade == nil {
		s.sink.OrderUpdated(order, notify.OrderCreated)
		return order, nil
	}

	s.dispatchTradeEvents(order, trade)
	return order, nil
}

// dispatchTradeEvents notifies both filled orders, the trade, and
// both parties' profile changes.
func (s *OrderService) dispatchTradeEvents(placed *domain.Order, trade *domain.Trade) {
	buy, errB := s.orders.Get(trade.BuyOrderID)
	sell, errS := s.orders.Get(trade.SellOrderID)
	if errB != nil || errS != nil {
		return
	}

	s.sink.OrderUpdated(placed, notify.OrderFilled)
	counterpart := buy
	if placed.ID == buy.ID {
		counterpart = sell
	}
	s.sink.OrderUpdated(counterpart, notify.OrderFilled)
	s.sink.TradeExecuted(trade, buy, sell)
	s.sink.ProfileUpdated(buy.UserID)
	s.sink.ProfileUpdated(sell.UserID)
}

// CancelOrder cancels an OPEN order owned by the requesting user and
// refunds its reservation.
func (s *OrderService) CancelOrder(orderID string, userID int64) (*domain.Order, error) {
	order, err := s.matcher.CancelOrder(orderID, userID)
	if err != nil {
		return nil, err
	}

	s.sink.OrderUpdated(order, notify.OrderCancelled)
	s.sink.ProfileUpdated(order.UserID)

	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(userID int64) ([]*domain.Order, error) {
	if !s.users.Exists(userID) {
		return nil, domain.ErrUserNotFound
	}
	return s.orders.ListByUser(userID), nil
}
