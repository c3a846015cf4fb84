package hashstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"certiva/pkg/apperrors"
	"certiva/pkg/platform/sentinel"
)

// Service computes and records content hashes for certificate source bytes.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// SetHashInput supplies either a caller-computed digest or a file to digest.
// An explicit Hash wins; otherwise FilePath is read in full and hashed.
type SetHashInput struct {
	Hash     string            `json:"hash,omitempty"`
	FilePath string            `json:"filePath,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SetHash stores the integrity record for a certificate. The digest is
// SHA-256 over the exact byte sequence, lower-case hex encoded; no
// normalization of line endings, encoding, or whitespace is applied.
// The write is an idempotent upsert keyed by certificate id.
func (s *Service) SetHash(ctx context.Context, certificateID uuid.UUID, in SetHashInput) (*CertificateHash, error) {
	digest := in.Hash
	if digest == "" {
		if in.FilePath == "" {
			return nil, apperrors.Validation(
				apperrors.FieldError{Field: "hash", Message: "either hash or filePath is required"},
			)
		}
		data, err := os.ReadFile(in.FilePath)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to read file for hashing")
		}
		digest = DigestBytes(data)
	}

	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	record := &CertificateHash{
		CertificateID: certificateID,
		Hash:          digest,
		Metadata:      metadata,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to persist certificate hash")
	}

	s.logger.Info("certificate hash recorded", "certificate_id", certificateID)
	return record, nil
}

// GetHash returns the current integrity record for a certificate.
func (s *Service) GetHash(ctx context.Context, certificateID uuid.UUID) (*CertificateHash, error) {
	record, err := s.store.Get(ctx, certificateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "no hash recorded for certificate")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to load certificate hash")
	}
	return record, nil
}

// DigestBytes computes the lower-case hex SHA-256 digest of data.
func DigestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
