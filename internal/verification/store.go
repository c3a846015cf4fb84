package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks_test.go -package=verification certiva/internal/verification Store,Extractor

// ListQuery is the store-level shape of a listing: filters plus the optional
// requester narrowing already resolved by the query service.
type ListQuery struct {
	RequestedBy *uuid.UUID
	Statuses    []Status
	DateFrom    *time.Time
	DateTo      *time.Time
	Search      string
	Offset      int
	Limit       int // 0 means no pagination (export path)
}

// Store persists verification requests. The audit trail is append-only:
// Create inserts, UpdateClassification mutates exactly the named record, and
// nothing deletes.
type Store interface {
	Create(ctx context.Context, req *Request) error
	// UpdateClassification persists the policy outcome for the record with
	// the given id and no other.
	UpdateClassification(ctx context.Context, id uuid.UUID, status Status, result ResultPayload) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// List returns one page of matching rows plus the exact total match
	// count independent of pagination.
	List(ctx context.Context, q ListQuery) ([]Request, int, error)
	// CountForRequester counts a requester's records, optionally narrowed to
	// one status and/or a lower creation-time bound.
	CountForRequester(ctx context.Context, requestedBy uuid.UUID, status Status, since *time.Time) (int, error)
	// ListRecent returns the requester's newest records, most recent first.
	ListRecent(ctx context.Context, requestedBy uuid.UUID, limit int) ([]Request, error)
}
