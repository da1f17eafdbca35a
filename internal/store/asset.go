package store

import (
	"sync"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/shopspring/decimal"
)

type assetKey struct {
	userID   int64
	tickerID int64
}

// AssetStore is a thread-safe in-memory store for per-(user, ticker)
// holdings, with a secondary index by user.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[assetKey]*domain.Asset
	byUser map[int64][]*domain.Asset
}

// NewAssetStore creates an empty AssetStore.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		assets: make(map[assetKey]*domain.Asset),
		byUser: make(map[int64][]*domain.Asset),
	}
}

// GetOrCreate returns the asset for the given user and ticker,
// creating a zero-balance record if absent.
func (s *AssetStore) GetOrCreate(userID, tickerID int64) *domain.Asset {
	key := assetKey{userID: userID, tickerID: tickerID}

	s.mu.RLock()
	a, ok := s.assets[key]
	s.mu.RUnlock()
	if ok {
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Double-check after acquiring write lock.
	if a, ok = s.assets[key]; ok {
		return a
	}
	a = &domain.Asset{
		UserID:       userID,
		TickerID:     tickerID,
		Amount:       decimal.Zero,
		LockedAmount: decimal.Zero,
	}
	s.assets[key] = a
	s.byUser[userID] = append(s.byUser[userID], a)
	return a
}

// Get returns the asset for the given user and ticker, or nil if the
// user has never held it.
func (s *AssetStore) Get(userID, tickerID int64) *domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.assets[assetKey{userID: userID, tickerID: tickerID}]
}

// ListByUser returns all asset records for a user, in creation order.
func (s *AssetStore) ListByUser(userID int64) []*domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := s.byUser[userID]
	result := make([]*domain.Asset, len(assets))
	copy(result, assets)
	return result
}
