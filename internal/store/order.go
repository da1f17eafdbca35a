package store

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
)

// OrderStore is a thread-safe in-memory store for orders, with a
// primary index by order ID and a secondary index by user. All read
// methods return copies taken under the store's lock, so callers can
// hold onto the result, read it from any goroutine, and never observe
// a half-applied fill.
type OrderStore struct {
	mu         sync.RWMutex
	orders     map[string]*domain.Order
	userOrders map[int64][]*domain.Order // user_id → orders (append-only)
}

// snapshot copies an order. Decimal fields share their backing
// integers, which is safe: decimal values are never mutated in place.
func snapshot(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:     make(map[string]*domain.Order),
		userOrders: make(map[int64][]*domain.Order),
	}
}

// Create adds an order to the store and appends it to the user's
// secondary index. The store takes ownership of the order: after
// Create, every mutation goes through a store method.
func (s *OrderStore) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = o
	s.userOrders[o.UserID] = append(s.userOrders[o.UserID], o)
}

// Get retrieves a copy of an order by ID. It returns
// domain.ErrOrderNotFound if the order does not exist.
func (s *OrderStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return snapshot(o), nil
}

// TransitionStatus conditionally moves an order from one status to
// another, stamping the matching timestamp. It returns
// domain.ErrOrderNotFound if the order does not exist and
// domain.ErrInvalidState if the order is not in the expected status,
// in which case nothing changes. This is the only way an order's
// status ever changes.
func (s *OrderStore) TransitionStatus(id string, from, to domain.OrderStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidState
	}
	o.Status = to
	switch to {
	case domain.OrderStatusFilled:
		o.FilledAt = &at
	case domain.OrderStatusCancelled:
		o.CancelledAt = &at
	}
	return nil
}

// FillPair conditionally transitions a buy order and a sell order
// from OPEN to FILLED together and applies the fill: both statuses,
// the shared fill time, the executed price on the buy side, and both
// filled quantities change under one critical section, so no reader
// ever sees a half-settled order. If either order is missing or not
// OPEN, nothing changes and domain.ErrConflict is returned: the pair
// was claimed by a concurrent settlement.
func (s *OrderStore) FillPair(buyID, sellID string, price, quantity decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buy, okB := s.orders[buyID]
	sell, okS := s.orders[sellID]
	if !okB || !okS {
		return domain.ErrConflict
	}
	if buy.Status != domain.OrderStatusOpen || sell.Status != domain.OrderStatusOpen {
		return domain.ErrConflict
	}
	buy.Status = domain.OrderStatusFilled
	buy.FilledAt = &at
	buy.Price = price
	buy.FilledQuantity = buy.FilledQuantity.Add(quantity)
	sell.Status = domain.OrderStatusFilled
	sell.FilledAt = &at
	sell.FilledQuantity = sell.FilledQuantity.Add(quantity)
	return nil
}

// ListByUser returns a user's orders in reverse chronological order
// (newest first).
func (s *OrderStore) ListByUser(userID int64) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.userOrders[userID]
	result := make([]*domain.Order, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		result = append(result, snapshot(all[i]))
	}
	return result
}

// OpenBuyOrders returns a user's OPEN BUY orders, used to compute the
// cash locked against open bids.
func (s *OrderStore) OpenBuyOrders(userID int64) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Order
	for _, o := range s.userOrders[userID] {
		if o.Side == domain.OrderSideBuy && o.Status == domain.OrderStatusOpen {
			result = append(result, snapshot(o))
		}
	}
	return result
}
