package verification

import (
	"time"

	"github.com/google/uuid"
)

// Status is the trust disposition of a verification request.
//
// PROCESSING is the initial state. VERIFIED and REJECTED are terminal; no
// automated transition ever leaves them. FLAGGED is stable but non-terminal:
// it parks the request for manual review and is never retried automatically.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusVerified   Status = "VERIFIED"
	StatusFlagged    Status = "FLAGGED"
	StatusRejected   Status = "REJECTED"
)

// ValidStatus reports whether s is a recognized request status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusVerified, StatusFlagged, StatusRejected:
		return true
	}
	return false
}

// ResultPayload is the persisted outcome of one extraction: the oracle's raw
// signal plus the classification reason once the policy has run.
type ResultPayload struct {
	Confidence       float64        `json:"confidence"`
	ValidationPassed bool           `json:"validation_passed"`
	Reason           string         `json:"reason,omitempty"`
	Fields           map[string]any `json:"fields,omitempty"`
}

// CertificateRef is the joined projection of an associated certificate used
// by listing and export.
type CertificateRef struct {
	CertificateNumber string     `json:"certificate_number"`
	StudentName       string     `json:"student_name"`
	Course            string     `json:"course,omitempty"`
	InstitutionID     *uuid.UUID `json:"institution_id,omitempty"`
}

// Request is one submission of a document for trust classification. Records
// are append-only: they are mutated exactly once (the classification update)
// and never deleted.
type Request struct {
	ID            uuid.UUID       `json:"id"`
	CertificateID *uuid.UUID      `json:"certificate_id"`
	RequestedBy   uuid.UUID       `json:"requested_by"`
	Status        Status          `json:"status"`
	Result        ResultPayload   `json:"result"`
	CreatedAt     time.Time       `json:"created_at"`
	Certificate   *CertificateRef `json:"certificate,omitempty"`
}

// Filters narrows a listing or export. Zero values mean "no constraint".
type Filters struct {
	Statuses []Status
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Page     int
	Limit    int
}

// PageResult is one page of matching requests plus the exact total count.
type PageResult struct {
	Rows  []Request `json:"data"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int       `json:"total"`
}

// Requester identifies the caller for role-scoped visibility. Verifiers see
// only their own submissions; broader roles are assumed already authorized
// upstream and see the unfiltered set.
type Requester struct {
	ID   uuid.UUID
	Role string
}
