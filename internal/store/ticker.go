package store

import (
	"sync"

	"github.com/efreitasn/coinex/internal/domain"
)

// TickerStore is a thread-safe in-memory store for tickers, indexed
// by ID and by symbol. Tickers are seeded at startup and immutable
// afterwards.
type TickerStore struct {
	mu       sync.RWMutex
	nextID   int64
	byID     map[int64]*domain.Ticker
	bySymbol map[string]*domain.Ticker
}

// NewTickerStore creates an empty TickerStore.
func NewTickerStore() *TickerStore {
	return &TickerStore{
		byID:     make(map[int64]*domain.Ticker),
		bySymbol: make(map[string]*domain.Ticker),
	}
}

// Create adds a ticker, assigning its ID. Creating a symbol that
// already exists returns the existing ticker.
func (s *TickerStore) Create(symbol, name string, typ domain.TickerType) *domain.Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.bySymbol[symbol]; ok {
		return t
	}
	s.nextID++
	t := &domain.Ticker{
		ID:     s.nextID,
		Symbol: symbol,
		Name:   name,
		Type:   typ,
	}
	s.byID[t.ID] = t
	s.bySymbol[t.Symbol] = t
	return t
}

// GetBySymbol retrieves a ticker by symbol. It returns
// domain.ErrSymbolNotFound if the symbol is unknown.
func (s *TickerStore) GetBySymbol(symbol string) (*domain.Ticker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.bySymbol[symbol]
	if !ok {
		return nil, domain.ErrSymbolNotFound
	}
	return t, nil
}

// Get retrieves a ticker by ID. It returns domain.ErrSymbolNotFound
// if no ticker has that ID.
func (s *TickerStore) Get(id int64) (*domain.Ticker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrSymbolNotFound
	}
	return t, nil
}
