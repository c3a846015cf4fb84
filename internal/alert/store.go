package alert

import (
	"context"

	"github.com/google/uuid"
)

// Store persists alerts.
type Store interface {
	Create(ctx context.Context, a *Alert) error
	// List returns matching alerts, newest first.
	List(ctx context.Context, f Filters) ([]Alert, error)
	// Resolve marks the alert resolved.
	Resolve(ctx context.Context, id uuid.UUID) error
}
