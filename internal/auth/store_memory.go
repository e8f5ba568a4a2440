package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/vidtweet/backend/internal/models"
)

// NewInMemoryUserStore returns a UserStore backed by an in-memory map.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]models.User)}
}

// InMemoryUserStore implements UserStore for tests and local development.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// Put inserts or replaces a user record.
func (s *InMemoryUserStore) Put(user models.User) {
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
}

// FindByID retrieves a user by identifier.
func (s *InMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	user, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// FindByLogin matches the identifier against username first, then email.
func (s *InMemoryUserStore) FindByLogin(_ context.Context, identifier string) (models.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == identifier {
			return user, nil
		}
	}
	for _, user := range s.users {
		if user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// SetRefreshToken overwrites the stored refresh token.
func (s *InMemoryUserStore) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

// SetPassword overwrites the stored password hash.
func (s *InMemoryUserStore) SetPassword(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = passwordHash
	s.users[userID] = user
	return nil
}

// StoredRefreshToken returns the refresh token on file. Useful for tests.
func (s *InMemoryUserStore) StoredRefreshToken(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID].RefreshToken
}
