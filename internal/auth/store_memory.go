package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// InMemoryUserStore is a map-backed UserStore for tests and local development.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[uuid.UUID]*User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return sentinel.ErrConflict
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
