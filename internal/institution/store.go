package institution

import (
	"context"

	"github.com/google/uuid"
)

// Store persists institutions.
type Store interface {
	Create(ctx context.Context, inst *Institution) error
	FindByID(ctx context.Context, id uuid.UUID) (*Institution, error)
	// List returns institutions whose name contains nameFilter
	// (case-insensitive); an empty filter returns all.
	List(ctx context.Context, nameFilter string) ([]Institution, error)
}
