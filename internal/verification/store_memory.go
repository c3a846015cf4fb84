package verification

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[uuid.UUID]*Request)}
}

func (s *InMemoryStore) Create(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *req
	s.requests[req.ID] = &copied
	return nil
}

func (s *InMemoryStore) UpdateClassification(_ context.Context, id uuid.UUID, status Status, result ResultPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	req.Status = status
	req.Result = result
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context, q ListQuery) ([]Request, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := s.filter(q)
	total := len(matching)

	if q.Limit > 0 {
		if q.Offset >= len(matching) {
			matching = nil
		} else {
			end := q.Offset + q.Limit
			if end > len(matching) {
				end = len(matching)
			}
			matching = matching[q.Offset:end]
		}
	}
	return matching, total, nil
}

func (s *InMemoryStore) CountForRequester(_ context.Context, requestedBy uuid.UUID, status Status, since *time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, req := range s.requests {
		if req.RequestedBy != requestedBy {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		if since != nil && req.CreatedAt.Before(*since) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, requestedBy uuid.UUID, limit int) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []Request
	for _, req := range s.requests {
		if req.RequestedBy == requestedBy {
			rows = append(rows, *req)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// filter applies every constraint and returns matches ordered newest first.
func (s *InMemoryStore) filter(q ListQuery) []Request {
	var matching []Request
	for _, req := range s.requests {
		if q.RequestedBy != nil && req.RequestedBy != *q.RequestedBy {
			continue
		}
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, req.Status) {
			continue
		}
		if q.DateFrom != nil && req.CreatedAt.Before(*q.DateFrom) {
			continue
		}
		if q.DateTo != nil && req.CreatedAt.After(*q.DateTo) {
			continue
		}
		if q.Search != "" {
			number := ""
			if req.Certificate != nil {
				number = req.Certificate.CertificateNumber
			}
			if !strings.Contains(strings.ToLower(number), strings.ToLower(q.Search)) {
				continue
			}
		}
		matching = append(matching, *req)
	}
	sort.Slice(matching, func(i, j int) bool {
		if matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].ID.String() < matching[j].ID.String()
		}
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})
	return matching
}

func containsStatus(statuses []Status, s Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
