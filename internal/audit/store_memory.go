package audit

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is a slice-backed Store for tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Metadata = maps.Clone(entry.Metadata)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, f Filters) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
			continue
		}
		if f.Action != "" && !strings.EqualFold(e.Action, f.Action) {
			continue
		}
		if f.TableName != "" && e.TableName != f.TableName {
			continue
		}
		if f.DateFrom != nil && e.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && e.CreatedAt.After(*f.DateTo) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
