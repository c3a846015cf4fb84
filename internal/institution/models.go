package institution

import (
	"time"

	"github.com/google/uuid"
)

// Institution is an issuing body certificates belong to.
type Institution struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
