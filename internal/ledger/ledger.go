// Package ledger implements exact-precision balance and holdings
// accounting: cash in integer cents on the user record, per-(user,
// ticker) asset quantities as 18-digit decimals with a locked portion
// reserved against open SELL orders.
package ledger

import (
	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/store"
	"github.com/shopspring/decimal"
)

// Ledger moves cash and holdings between accounts. Each operation is
// atomic with respect to concurrent operations on the same user or
// (user, ticker) key via the per-entity mutexes.
type Ledger struct {
	users  *store.UserStore
	assets *store.AssetStore
}

// New creates a Ledger over the given stores.
func New(users *store.UserStore, assets *store.AssetStore) *Ledger {
	return &Ledger{
		users:  users,
		assets: assets,
	}
}

// LockFunds deducts amount (rounded to cents) from the user's cash
// balance, reserving it for an open BUY order. Fails with
// domain.ErrInsufficientFunds and no side effect if the balance is
// short.
func (l *Ledger) LockFunds(userID int64, amount decimal.Decimal) error {
	u, err := l.users.Get(userID)
	if err != nil {
		return err
	}
	cents := domain.Cents(amount)

	u.Mu.Lock()
	defer u.Mu.Unlock()
	if u.Balance < cents {
		return domain.ErrInsufficientFunds
	}
	u.Balance -= cents
	return nil
}

// CreditFunds adds amount (rounded to cents) to the user's cash
// balance. There is no upper bound.
func (l *Ledger) CreditFunds(userID int64, amount decimal.Decimal) error {
	u, err := l.users.Get(userID)
	if err != nil {
		return err
	}
	cents := domain.Cents(amount)

	u.Mu.Lock()
	defer u.Mu.Unlock()
	u.Balance += cents
	return nil
}

// Balance returns the user's cash balance in cents.
func (l *Ledger) Balance(userID int64) (int64, error) {
	u, err := l.users.Get(userID)
	if err != nil {
		return 0, err
	}
	u.Mu.Lock()
	defer u.Mu.Unlock()
	return u.Balance, nil
}

// LockAsset reserves amount of the user's holding against an open
// SELL order. The asset record is created with zero balances if
// absent, so a user with no prior holdings fails the availability
// check rather than the lookup. Fails with
// domain.ErrInsufficientHoldings and no side effect if available
// (amount - locked) is short.
func (l *Ledger) LockAsset(userID, tickerID int64, amount decimal.Decimal) error {
	a := l.assets.GetOrCreate(userID, tickerID)

	a.Mu.Lock()
	defer a.Mu.Unlock()
	if a.Available().LessThan(amount) {
		return domain.ErrInsufficientHoldings
	}
	a.LockedAmount = a.LockedAmount.Add(amount)
	return nil
}

// ReleaseLocked removes amount from both the locked portion and the
// total holding — the locked quantity has actually been transferred
// away. Fails with domain.ErrInconsistent and no side effect if the
// locked portion is short.
func (l *Ledger) ReleaseLocked(userID, tickerID int64, amount decimal.Decimal) error {
	a := l.assets.GetOrCreate(userID, tickerID)

	a.Mu.Lock()
	defer a.Mu.Unlock()
	if a.LockedAmount.LessThan(amount) {
		return domain.ErrInconsistent
	}
	a.LockedAmount = a.LockedAmount.Sub(amount)
	a.Amount = a.Amount.Sub(amount)
	return nil
}

// UnlockAsset releases amount from the locked portion only — the
// holding stays owned (cancellation path). Fails with
// domain.ErrInconsistent and no side effect if the locked portion is
// short.
func (l *Ledger) UnlockAsset(userID, tickerID int64, amount decimal.Decimal) error {
	a := l.assets.GetOrCreate(userID, tickerID)

	a.Mu.Lock()
	defer a.Mu.Unlock()
	if a.LockedAmount.LessThan(amount) {
		return domain.ErrInconsistent
	}
	a.LockedAmount = a.LockedAmount.Sub(amount)
	return nil
}

// CreditAsset adds amount to the user's holding (buyer receiving the
// purchased quantity).
func (l *Ledger) CreditAsset(userID, tickerID int64, amount decimal.Decimal) {
	a := l.assets.GetOrCreate(userID, tickerID)

	a.Mu.Lock()
	defer a.Mu.Unlock()
	a.Amount = a.Amount.Add(amount)
}

// RestoreLocked re-establishes a locked holding that was released in
// a settlement step that later had to abort: the quantity returns to
// both the total and the locked portion.
func (l *Ledger) RestoreLocked(userID, tickerID int64, amount decimal.Decimal) {
	a := l.assets.GetOrCreate(userID, tickerID)

	a.Mu.Lock()
	defer a.Mu.Unlock()
	a.Amount = a.Amount.Add(amount)
	a.LockedAmount = a.LockedAmount.Add(amount)
}
