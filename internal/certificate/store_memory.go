package certificate

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests.
type InMemoryStore struct {
	mu           sync.RWMutex
	certificates map[uuid.UUID]*Certificate
	subjects     map[uuid.UUID]*Subject
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		certificates: make(map[uuid.UUID]*Certificate),
		subjects:     make(map[uuid.UUID]*Subject),
	}
}

func (s *InMemoryStore) Create(_ context.Context, cert *Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cert
	s.certificates[cert.ID] = &copied
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, institutionID uuid.UUID, cert *Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.certificates[cert.ID]
	if !ok || existing.InstitutionID != institutionID {
		return sentinel.ErrNotFound
	}
	copied := *cert
	copied.InstitutionID = existing.InstitutionID
	copied.CreatedAt = existing.CreatedAt
	s.certificates[cert.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.certificates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *cert
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context, f Filters) ([]Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Certificate
	for _, cert := range s.certificates {
		if f.InstitutionID != uuid.Nil && cert.InstitutionID != f.InstitutionID {
			continue
		}
		if f.Status != "" && cert.Status != f.Status {
			continue
		}
		out = append(out, *cert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) AddSubjects(_ context.Context, subjects []Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range subjects {
		copied := subjects[i]
		s.subjects[copied.ID] = &copied
	}
	return nil
}

func (s *InMemoryStore) UpdateSubject(_ context.Context, subject *Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subjects[subject.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	copied := *subject
	copied.CertificateID = existing.CertificateID
	s.subjects[subject.ID] = &copied
	return nil
}

func (s *InMemoryStore) ListSubjects(_ context.Context, certificateID uuid.UUID) ([]Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Subject
	for _, sub := range s.subjects {
		if sub.CertificateID == certificateID {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}
