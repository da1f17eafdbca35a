package store

import (
	"sync"

	"github.com/efreitasn/coinex/internal/domain"
)

// TradeStore is a thread-safe append-only store for executed trades,
// chronological, with a secondary index by ticker.
type TradeStore struct {
	mu       sync.RWMutex
	trades   []*domain.Trade
	byTicker map[int64][]*domain.Trade
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		byTicker: make(map[int64][]*domain.Trade),
	}
}

// Append records a trade. Trades are never updated or deleted.
func (s *TradeStore) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades = append(s.trades, t)
	s.byTicker[t.TickerID] = append(s.byTicker[t.TickerID], t)
}

// ListByTicker returns all trades for a ticker in chronological order.
func (s *TradeStore) ListByTicker(tickerID int64) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.byTicker[tickerID]
	result := make([]*domain.Trade, len(trades))
	copy(result, trades)
	return result
}

// Recent returns up to limit trades, newest first.
func (s *TradeStore) Recent(limit int) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}
	result := make([]*domain.Trade, 0, limit)
	for i := len(s.trades) - 1; i >= len(s.trades)-limit; i-- {
		result = append(result, s.trades[i])
	}
	return result
}
