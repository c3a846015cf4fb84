package hashstore

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*CertificateHash
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID]*CertificateHash)}
}

func (s *InMemoryStore) Upsert(_ context.Context, record *CertificateHash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	copied.Metadata = maps.Clone(record.Metadata)
	s.records[record.CertificateID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, certificateID uuid.UUID) (*CertificateHash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[certificateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	copied.Metadata = maps.Clone(record.Metadata)
	return &copied, nil
}
