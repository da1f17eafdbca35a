package store

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
)

func TestAssetStore_GetOrCreate(t *testing.T) {
	s := NewAssetStore()

	a := s.GetOrCreate(1, 7)
	if a.UserID != 1 || a.TickerID != 7 {
		t.Fatalf("wrong keys: %d/%d", a.UserID, a.TickerID)
	}
	if !a.Amount.IsZero() || !a.LockedAmount.IsZero() {
		t.Error("fresh asset must be zero")
	}

	if s.GetOrCreate(1, 7) != a {
		t.Error("GetOrCreate must return the same record")
	}
}

func TestAssetStore_GetOrCreate_Concurrent(t *testing.T) {
	s := NewAssetStore()

	const n = 32
	var wg sync.WaitGroup
	seen := make(chan *domain.Asset, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.GetOrCreate(1, 7)
		}()
	}
	wg.Wait()
	close(seen)

	first := <-seen
	for a := range seen {
		if a != first {
			t.Fatal("concurrent GetOrCreate produced distinct records")
		}
	}

	if got := len(s.ListByUser(1)); got != 1 {
		t.Errorf("user index has %d records, want 1", got)
	}
}

func TestAssetStore_GetAndList(t *testing.T) {
	s := NewAssetStore()

	if s.Get(1, 7) != nil {
		t.Error("Get on an unknown key must return nil")
	}

	a := s.GetOrCreate(1, 7)
	a.Amount = decimal.NewFromInt(2)
	b := s.GetOrCreate(1, 8)

	if s.Get(1, 7) != a {
		t.Error("Get returned the wrong record")
	}

	list := s.ListByUser(1)
	if len(list) != 2 || list[0] != a || list[1] != b {
		t.Fatalf("ListByUser = %v", list)
	}
	if len(s.ListByUser(2)) != 0 {
		t.Error("unknown user must list empty")
	}
}
