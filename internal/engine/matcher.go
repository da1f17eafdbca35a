package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/ledger"
	"github.com/efreitasn/coinex/internal/store"
)

// Matcher implements the matching engine: exact full-quantity
// matching only. An incoming order either fully consumes exactly one
// counter-order of identical remaining quantity or rests on the book
// untouched. No partial fills are ever produced; this is a strict
// design constraint, not a shortcut.
type Matcher struct {
	books          *BookManager
	orders         *store.OrderStore
	trades         *store.TradeStore
	ledger         *ledger.Ledger
	commissionRate decimal.Decimal // per side, fraction of trade value
	maxRetries     int             // bounded retries on transient claim conflicts
	logger         *slog.Logger
}

// NewMatcher creates a Matcher with the given dependencies.
func NewMatcher(
	books *BookManager,
	orders *store.OrderStore,
	trades *store.TradeStore,
	ledger *ledger.Ledger,
	commissionRate decimal.Decimal,
	maxRetries int,
	logger *slog.Logger,
) *Matcher {
	return &Matcher{
		books:          books,
		orders:         orders,
		trades:         trades,
		ledger:         ledger,
		commissionRate: commissionRate,
		maxRetries:     maxRetries,
		logger:         logger,
	}
}

// PlaceOrder reserves the required funds or holdings, creates the
// order, and attempts to match it. It returns the order and, when a
// match executed, the resulting trade.
//
// The caller must have validated price and amount. The per-ticker
// write lock is held from reservation through settlement commit, so
// placement plus matching is one atomic unit.
//
// If the reservation fails the order is never created. If settlement
// fails the order stays OPEN on the book and the error is surfaced
// alongside it.
func (m *Matcher) PlaceOrder(userID int64, tickerID int64, side domain.OrderSide, price, amount decimal.Decimal) (*domain.Order, *domain.Trade, error) {
	book := m.books.GetOrCreate(tickerID)

	book.mu.Lock()
	defer book.mu.Unlock()

	// Reserve before the order exists: a BUY locks price × amount of
	// cash, a SELL locks the quantity being sold.
	if side == domain.OrderSideBuy {
		if err := m.ledger.LockFunds(userID, price.Mul(amount)); err != nil {
			return nil, nil, err
		}
	} else {
		if err := m.ledger.LockAsset(userID, tickerID, amount); err != nil {
			return nil, nil, err
		}
	}

	order := &domain.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		TickerID:       tickerID,
		Side:           side,
		Price:          price,
		Amount:         amount,
		FilledQuantity: decimal.Zero,
		Status:         domain.OrderStatusOpen,
		OpenedAt:       time.Now(),
	}
	m.orders.Create(order)

	// A claim conflict is transient: the losing match attempt is
	// retried a bounded number of times before surfacing. Validation
	// and consistency failures are never retried.
	var trade *domain.Trade
	var err error
	for attempt := 0; ; attempt++ {
		trade, err = m.match(book, order)
		if !errors.Is(err, domain.ErrConflict) || attempt >= m.maxRetries {
			break
		}
	}
	if trade == nil {
		// Unmatched (or aborted settlement): the order rests on the
		// book and is now a candidate for future placements.
		book.Insert(order)
	}

	// The caller gets a copy, not the book's live order: once the book
	// lock is released the live order can be filled at any moment.
	placed, _ := m.orders.Get(order.ID)
	if err != nil {
		return placed, nil, err
	}
	return placed, trade, nil
}

// match scans candidates in strict price-time priority and settles
// against the first one whose remaining quantity exactly equals the
// incoming order's. All price-eligible candidates are scanned, not
// just the single best-priced one.
func (m *Matcher) match(book *Book, order *domain.Order) (*domain.Trade, error) {
	var candidate *domain.Order

	remaining := order.Remaining()
	if order.Side == domain.OrderSideBuy {
		book.WalkSells(func(e Entry) bool {
			if e.Price.GreaterThan(order.Price) {
				return false // asks beyond this are priced out
			}
			if e.Order.Remaining().Equal(remaining) {
				candidate = e.Order
				return false
			}
			return true
		})
	} else {
		book.WalkBuys(func(e Entry) bool {
			if e.Price.LessThan(order.Price) {
				return false
			}
			if e.Order.Remaining().Equal(remaining) {
				candidate = e.Order
				return false
			}
			return true
		})
	}

	if candidate == nil {
		return nil, nil
	}
	return m.settle(book, order, candidate)
}

// CancelOrder cancels an OPEN order, refunding its reservation: a
// BUY order's locked cash is credited back in full, a SELL order's
// locked quantity is released back to available. The refund and the
// status change happen under the per-ticker lock as one unit.
func (m *Matcher) CancelOrder(orderID string, userID int64) (*domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}

	book := m.books.GetOrCreate(order.TickerID)
	book.mu.Lock()
	defer book.mu.Unlock()

	// Re-read under the lock: the order may have filled or been
	// cancelled since the lookup, and status only changes with this
	// book's lock held.
	order, err = m.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOpen() {
		return nil, domain.ErrInvalidState
	}

	if order.Side == domain.OrderSideSell {
		// The only fallible step; runs before anything mutates.
		if err := m.ledger.UnlockAsset(order.UserID, order.TickerID, order.Amount); err != nil {
			return nil, err
		}
	}

	// Status transitions only happen under this book's lock, so the
	// conditional transition cannot lose a race past the check above.
	if err := m.orders.TransitionStatus(order.ID, domain.OrderStatusOpen, domain.OrderStatusCancelled, time.Now()); err != nil {
		return nil, err
	}

	if order.Side == domain.OrderSideBuy {
		if err := m.ledger.CreditFunds(order.UserID, order.Total()); err != nil {
			return nil, err
		}
	}

	book.Remove(order.ID)

	m.logger.Info("order cancelled",
		slog.String("order_id", order.ID),
		slog.Int64("user_id", order.UserID),
		slog.String("side", string(order.Side)),
	)

	cancelled, _ := m.orders.Get(order.ID)
	return cancelled, nil
}
