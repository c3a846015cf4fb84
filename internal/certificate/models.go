package certificate

import (
	"time"

	"github.com/google/uuid"
)

// Certificate statuses. New records start PENDING until an institution
// admin or a verification outcome moves them on.
const (
	StatusPending = "PENDING"
	StatusActive  = "ACTIVE"
	StatusRevoked = "REVOKED"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusActive, StatusRevoked:
		return true
	}
	return false
}

// Certificate is an issued academic credential owned by an institution.
type Certificate struct {
	ID                uuid.UUID  `json:"id"`
	InstitutionID     uuid.UUID  `json:"institution_id"`
	CertificateNumber string     `json:"certificate_number"`
	StudentName       string     `json:"student_name"`
	RollNumber        string     `json:"roll_number,omitempty"`
	Course            string     `json:"course,omitempty"`
	IssuedDate        *time.Time `json:"issued_date,omitempty"`
	FileURL           string     `json:"file_url,omitempty"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Subject is a per-certificate course line item.
type Subject struct {
	ID            uuid.UUID `json:"id"`
	CertificateID uuid.UUID `json:"certificate_id"`
	Subject       string    `json:"subject"`
	Marks         string    `json:"marks,omitempty"`
}

// Filters narrows List results.
type Filters struct {
	InstitutionID uuid.UUID
	Status        string
}
