package engine

import (
	"sync"
	"time"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// Entry represents a single open order resting on the book.
type Entry struct {
	Price    decimal.Decimal
	OpenedAt time.Time
	OrderID  string
	Order    *domain.Order
}

// bidLess defines ordering for the buy side: price descending, then
// opened_at ascending, then order ID ascending. Min() returns the
// best bid (highest price, earliest time).
func bidLess(a, b Entry) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	if !a.OpenedAt.Equal(b.OpenedAt) {
		return a.OpenedAt.Before(b.OpenedAt)
	}
	return a.OrderID < b.OrderID
}

// askLess defines ordering for the sell side: price ascending, then
// opened_at ascending, then order ID ascending. Min() returns the
// best ask (lowest price, earliest time).
func askLess(a, b Entry) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	if !a.OpenedAt.Equal(b.OpenedAt) {
		return a.OpenedAt.Before(b.OpenedAt)
	}
	return a.OrderID < b.OrderID
}

// Book maintains the open buy and sell orders for a single ticker in
// strict price-time priority. Its mutex is also the critical section
// for every mutation on the ticker: matching, settlement, and
// cancellation all run with the write lock held, so a candidate can
// never be observed mid-settlement.
type Book struct {
	tickerID int64
	mu       sync.RWMutex
	buys     *btree.BTreeG[Entry]
	sells    *btree.BTreeG[Entry]
	index    map[string]Entry // order_id → entry
}

// NewBook creates an order book for the given ticker.
func NewBook(tickerID int64) *Book {
	const degree = 32
	return &Book{
		tickerID: tickerID,
		buys:     btree.NewG[Entry](degree, bidLess),
		sells:    btree.NewG[Entry](degree, askLess),
		index:    make(map[string]Entry),
	}
}

// Insert adds an open order to its side of the book.
func (b *Book) Insert(o *domain.Order) {
	entry := Entry{
		Price:    o.Price,
		OpenedAt: o.OpenedAt,
		OrderID:  o.ID,
		Order:    o,
	}
	if o.Side == domain.OrderSideBuy {
		b.buys.ReplaceOrInsert(entry)
	} else {
		b.sells.ReplaceOrInsert(entry)
	}
	b.index[entry.OrderID] = entry
}

// Remove deletes an order from the book by ID using the secondary
// index. Removing an absent order is a no-op.
func (b *Book) Remove(orderID string) {
	entry, ok := b.index[orderID]
	if !ok {
		return
	}
	delete(b.index, orderID)
	if entry.Order.Side == domain.OrderSideBuy {
		b.buys.Delete(entry)
	} else {
		b.sells.Delete(entry)
	}
}

// WalkBuys iterates open buy orders in priority order (highest price,
// earliest first). The callback returns true to continue.
func (b *Book) WalkBuys(fn func(Entry) bool) {
	b.buys.Ascend(fn)
}

// WalkSells iterates open sell orders in priority order (lowest
// price, earliest first). The callback returns true to continue.
func (b *Book) WalkSells(fn func(Entry) bool) {
	b.sells.Ascend(fn)
}

// BestBuy returns the highest-priority open buy order.
func (b *Book) BestBuy() (Entry, bool) {
	return b.buys.Min()
}

// BestSell returns the highest-priority open sell order.
func (b *Book) BestSell() (Entry, bool) {
	return b.sells.Min()
}

// BuyCount returns the number of open buy orders on the book.
func (b *Book) BuyCount() int {
	return b.buys.Len()
}

// SellCount returns the number of open sell orders on the book.
func (b *Book) SellCount() int {
	return b.sells.Len()
}

// Snapshot returns up to limit orders per side under the read lock:
// buys best-first (highest price), sells best-first (lowest price).
// The returned orders are copies, safe to read after the lock is
// released.
func (b *Book) Snapshot(limit int) (buys, sells []*domain.Order) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	collect := func(out *[]*domain.Order) func(Entry) bool {
		return func(e Entry) bool {
			if limit > 0 && len(*out) >= limit {
				return false
			}
			o := *e.Order
			*out = append(*out, &o)
			return true
		}
	}
	b.buys.Ascend(collect(&buys))
	b.sells.Ascend(collect(&sells))
	return buys, sells
}

// BookManager is a thread-safe map of ticker ID → Book.
type BookManager struct {
	mu    sync.RWMutex
	books map[int64]*Book
}

// NewBookManager creates a new BookManager.
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[int64]*Book),
	}
}

// GetOrCreate returns the book for the given ticker, creating one if
// it doesn't already exist.
func (m *BookManager) GetOrCreate(tickerID int64) *Book {
	m.mu.RLock()
	book, ok := m.books[tickerID]
	m.mu.RUnlock()
	if ok {
		return book
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = m.books[tickerID]; ok {
		return book
	}
	book = NewBook(tickerID)
	m.books[tickerID] = book
	return book
}
