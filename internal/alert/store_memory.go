package alert

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	alerts map[uuid.UUID]*Alert
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{alerts: make(map[uuid.UUID]*Alert)}
}

func (s *InMemoryStore) Create(_ context.Context, a *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *a
	s.alerts[a.ID] = &copied
	return nil
}

func (s *InMemoryStore) List(_ context.Context, f Filters) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Alert
	for _, a := range s.alerts {
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.Resolved != nil && a.Resolved != *f.Resolved {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Resolve(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	a.Resolved = true
	return nil
}
