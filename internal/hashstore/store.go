package hashstore

import (
	"context"

	"github.com/google/uuid"
)

// Store persists integrity records. Upsert replaces any prior record for the
// certificate; only the latest digest is retrievable.
type Store interface {
	Upsert(ctx context.Context, record *CertificateHash) error
	Get(ctx context.Context, certificateID uuid.UUID) (*CertificateHash, error)
}
