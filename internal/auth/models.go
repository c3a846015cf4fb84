package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles recognized by the platform. Verifiers submit verification requests,
// institutions issue certificates, admins operate the system.
const (
	RoleAdmin       = "admin"
	RoleInstitution = "institution"
	RoleVerifier    = "verifier"
)

// ValidRole reports whether role is one of the recognized roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInstitution, RoleVerifier:
		return true
	}
	return false
}

// User is an account that can authenticate against the API.
type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Name          string
	Role          string
	Verified      bool
	InstitutionID *uuid.UUID
	CreatedAt     time.Time
}

// Profile is the caller-facing projection of a User (no password hash).
type Profile struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	Verified      bool       `json:"verified"`
	InstitutionID *uuid.UUID `json:"institution_id,omitempty"`
}

// ProfileOf projects a user for API responses.
func ProfileOf(u *User) Profile {
	return Profile{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Verified:      u.Verified,
		InstitutionID: u.InstitutionID,
	}
}
