package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserStore persists user accounts. Implementations return sentinel errors
// for infrastructure facts; the service translates them.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
