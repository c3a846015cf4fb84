package hashstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// PostgresStore persists integrity records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, record *CertificateHash) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshal hash metadata: %w", err)
	}
	query := `
		INSERT INTO certificate_hashes (certificate_id, hash, metadata, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (certificate_id) DO UPDATE SET
			hash = EXCLUDED.hash,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, record.CertificateID, record.Hash, metadata, record.UpdatedAt); err != nil {
		return fmt.Errorf("upsert certificate hash: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, certificateID uuid.UUID) (*CertificateHash, error) {
	query := `
		SELECT certificate_id, hash, metadata, updated_at
		FROM certificate_hashes
		WHERE certificate_id = $1
	`
	var (
		record   CertificateHash
		metadata []byte
	)
	err := s.db.QueryRowContext(ctx, query, certificateID).Scan(
		&record.CertificateID,
		&record.Hash,
		&metadata,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get certificate hash: %w", err)
	}
	if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal hash metadata: %w", err)
	}
	return &record, nil
}
