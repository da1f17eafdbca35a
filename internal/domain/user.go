package domain

import (
	"sync"
	"time"
)

// User represents an account holder on the exchange. Identity and
// authentication are handled by an external collaborator; the core
// only tracks the cash balance.
type User struct {
	ID        int64
	Name      string
	Balance   int64 // total cash in cents, never negative
	CreatedAt time.Time
	Mu        sync.Mutex // per-user lock for balance mutations
}
