package hashstore

import (
	"time"

	"github.com/google/uuid"
)

// CertificateHash is the content-addressed integrity record for a
// certificate's source bytes. At most one live record exists per certificate;
// writes replace the prior digest.
type CertificateHash struct {
	CertificateID uuid.UUID         `json:"certificate_id"`
	Hash          string            `json:"hash"`
	Metadata      map[string]string `json:"metadata"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
