package institution

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests.
type InMemoryStore struct {
	mu           sync.RWMutex
	institutions map[uuid.UUID]*Institution
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{institutions: make(map[uuid.UUID]*Institution)}
}

func (s *InMemoryStore) Create(_ context.Context, inst *Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *inst
	s.institutions[inst.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.institutions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *inst
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context, nameFilter string) ([]Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Institution
	for _, inst := range s.institutions {
		if nameFilter != "" && !strings.Contains(strings.ToLower(inst.Name), strings.ToLower(nameFilter)) {
			continue
		}
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
