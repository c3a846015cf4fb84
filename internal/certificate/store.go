package certificate

import (
	"context"

	"github.com/google/uuid"
)

// Store persists certificates and their subject rows.
type Store interface {
	Create(ctx context.Context, cert *Certificate) error
	// Update rewrites the mutable columns of a certificate owned by
	// institutionID. A certificate belonging to another institution is
	// reported as sentinel.ErrNotFound, not forbidden, so callers cannot
	// probe for foreign ids.
	Update(ctx context.Context, institutionID uuid.UUID, cert *Certificate) error
	FindByID(ctx context.Context, id uuid.UUID) (*Certificate, error)
	List(ctx context.Context, f Filters) ([]Certificate, error)

	AddSubjects(ctx context.Context, subjects []Subject) error
	UpdateSubject(ctx context.Context, subject *Subject) error
	ListSubjects(ctx context.Context, certificateID uuid.UUID) ([]Subject, error)
}
