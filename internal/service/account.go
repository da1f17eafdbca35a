package service

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/ledger"
	"github.com/efreitasn/coinex/internal/pricing"
	"github.com/efreitasn/coinex/internal/store"
)

// BalanceResponse represents a user's cash position. Available is
// the spendable cash, Locked the cash reserved by open BUY orders,
// and Total their sum.
type BalanceResponse struct {
	Available decimal.Decimal
	Locked    decimal.Decimal
	Total     decimal.Decimal
}

// Holding represents one sellable position valued at the oracle
// price.
type Holding struct {
	Symbol       string
	Name         string
	Available    decimal.Decimal
	CurrentPrice decimal.Decimal
	Value        decimal.Decimal
}

// AccountService serves balance and holdings queries. Valuation uses
// the injected price oracle and never feeds back into matching.
type AccountService struct {
	users   *store.UserStore
	orders  *store.OrderStore
	assets  *store.AssetStore
	tickers *store.TickerStore
	ledger  *ledger.Ledger
	oracle  pricing.Oracle
}

// NewAccountService creates an AccountService with the given
// dependencies.
func NewAccountService(
	users *store.UserStore,
	orders *store.OrderStore,
	assets *store.AssetStore,
	tickers *store.TickerStore,
	ledger *ledger.Ledger,
	oracle pricing.Oracle,
) *AccountService {
	return &AccountService{
		users:   users,
		orders:  orders,
		assets:  assets,
		tickers: tickers,
		ledger:  ledger,
		oracle:  oracle,
	}
}

// Balance returns the user's available, locked, and total cash. The
// balance field already excludes locked cash (it was deducted when
// the BUY orders were placed), so locked is reconstructed from the
// user's open BUY orders.
func (s *AccountService) Balance(userID int64) (*BalanceResponse, error) {
	cents, err := s.ledger.Balance(userID)
	if err != nil {
		return nil, err
	}

	locked := decimal.Zero
	for _, o := range s.orders.OpenBuyOrders(userID) {
		locked = locked.Add(o.Total())
	}
	locked = locked.Round(domain.CurrencyPrecision)

	available := domain.FromCents(cents)
	return &BalanceResponse{
		Available: available,
		Locked:    locked,
		Total:     available.Add(locked),
	}, nil
}

// Holdings returns the user's positions with available quantity,
// valued at the current oracle price.
func (s *AccountService) Holdings(userID int64) ([]Holding, error) {
	if !s.users.Exists(userID) {
		return nil, domain.ErrUserNotFound
	}

	holdings := make([]Holding, 0)
	for _, a := range s.assets.ListByUser(userID) {
		a.Mu.Lock()
		available := a.Available()
		a.Mu.Unlock()
		if !available.IsPositive() {
			continue
		}

		ticker, err := s.tickers.Get(a.TickerID)
		if err != nil {
			continue
		}
		price := s.oracle.CurrentPrice(ticker.Symbol)
		holdings = append(holdings, Holding{
			Symbol:       ticker.Symbol,
			Name:         ticker.Name,
			Available:    available,
			CurrentPrice: price,
			Value:        available.Mul(price),
		})
	}
	return holdings, nil
}
