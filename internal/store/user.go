package store

import (
	"sync"

	"github.com/efreitasn/coinex/internal/domain"
)

// UserStore is a thread-safe in-memory store for users, keyed by
// user ID. Users are created by the external account collaborator
// (or test setup); the core only reads and mutates balances.
type UserStore struct {
	mu    sync.RWMutex
	users map[int64]*domain.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[int64]*domain.User),
	}
}

// Put adds or replaces a user in the store.
func (s *UserStore) Put(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
}

// Get retrieves a user by ID. It returns domain.ErrUserNotFound if
// the user does not exist.
func (s *UserStore) Get(id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Exists returns true if a user with the given ID exists.
func (s *UserStore) Exists(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[id]
	return ok
}
