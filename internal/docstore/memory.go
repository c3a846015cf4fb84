package docstore

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"certiva/pkg/apperrors"
	"certiva/pkg/platform/sentinel"
)

// InMemoryStore is an Uploader double for tests and for deployments
// without an object store configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

func (s *InMemoryStore) Upload(_ context.Context, ownerID uuid.UUID, doc Document) (string, error) {
	ext, err := doc.validate()
	if err != nil {
		return "", err
	}

	content, err := io.ReadAll(io.LimitReader(doc.Content, MaxDocumentSize))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeStorage, "read document")
	}

	key := objectKey(ownerID, ext)
	s.mu.Lock()
	s.objects[key] = content
	s.mu.Unlock()
	return key, nil
}

func (s *InMemoryStore) PresignedURL(_ context.Context, objectKey string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[objectKey]; !ok {
		return "", apperrors.Wrap(sentinel.ErrNotFound, apperrors.CodeNotFound, "document not found")
	}
	return "memory://" + objectKey, nil
}

// Object returns the stored bytes, for test assertions.
func (s *InMemoryStore) Object(objectKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.objects[objectKey]
	return content, ok
}
