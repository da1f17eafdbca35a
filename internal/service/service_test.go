package service

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/engine"
	"github.com/efreitasn/coinex/internal/ledger"
	"github.com/efreitasn/coinex/internal/pricing"
	"github.com/efreitasn/coinex/internal/store"
)

// testEnv bundles the full service wiring for a test.
type testEnv struct {
	orderSvc   *OrderService
	accountSvc *AccountService
	bookSvc    *BookService
	users      *store.UserStore
	tickers    *store.TickerStore
	assets     *store.AssetStore
	oracle     *pricing.StaticOracle
	sink       *recordingSink
	btc        *domain.Ticker
}

func newTestEnv() *testEnv {
	users := store.NewUserStore()
	tickers := store.NewTickerStore()
	assets := store.NewAssetStore()
	orders := store.NewOrderStore()
	trades := store.NewTradeStore()
	lgr := ledger.New(users, assets)
	books := engine.NewBookManager()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	matcher := engine.NewMatcher(books, orders, trades, lgr,
		decimal.RequireFromString("0.015"), 3, logger)
	oracle := pricing.NewStaticOracle()
	sink := &recordingSink{}

	btc := tickers.Create("BTC", "Bitcoin", domain.TickerTypeCrypto)

	return &testEnv{
		orderSvc:   NewOrderService(matcher, users, tickers, orders, sink, logger),
		accountSvc: NewAccountService(users, orders, assets, tickers, lgr, oracle),
		bookSvc:    NewBookService(books, tickers),
		users:      users,
		tickers:    tickers,
		assets:     assets,
		oracle:     oracle,
		sink:       sink,
		btc:        btc,
	}
}

func (e *testEnv) addUser(id int64, cents int64) {
	e.users.Put(&domain.User{ID: id, Balance: cents, CreatedAt: time.Now()})
}

func (e *testEnv) addHolding(userID int64, amount string) {
	a := e.assets.GetOrCreate(userID, e.btc.ID)
	a.Amount = decimal.RequireFromString(amount)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recordingSink captures every notification for assertions. It
// retains the order pointers it is handed, relying on the sink
// contract that they are private copies.
type recordingSink struct {
	mu       sync.Mutex
	orders   []orderEvent
	retained []*domain.Order
	trades   []tradeEvent
	profiles []int64
}

type orderEvent struct {
	orderID string
	action  string
}

type tradeEvent struct {
	tradeID     string
	buyOrderID  string
	sellOrderID string
}

func (s *recordingSink) OrderUpdated(order *domain.Order, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, orderEvent{orderID: order.ID, action: action})
	s.retained = append(s.retained, order)
}

func (s *recordingSink) TradeExecuted(trade *domain.Trade, buy, sell *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, tradeEvent{
		tradeID:     trade.ID,
		buyOrderID:  buy.ID,
		sellOrderID: sell.ID,
	})
}

func (s *recordingSink) ProfileUpdated(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, userID)
}

func (s *recordingSink) orderEvents() []orderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orderEvent, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *recordingSink) retainedOrders() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Order, len(s.retained))
	copy(out, s.retained)
	return out
}

func (s *recordingSink) tradeEvents() []tradeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tradeEvent, len(s.trades))
	copy(out, s.trades)
	return out
}

func (s *recordingSink) profileEvents() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.profiles))
	copy(out, s.profiles)
	return out
}
