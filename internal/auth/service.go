package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"certiva/pkg/apperrors"
	"certiva/pkg/platform/sentinel"
)

const minPasswordLength = 6

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID uuid.UUID, role, email, institutionID string) (string, error)
}

// Service handles registration, login, and profile lookup.
type Service struct {
	users  UserStore
	tokens TokenIssuer
	logger *slog.Logger
}

func NewService(users UserStore, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// RegisterInput is the statically-typed registration payload.
type RegisterInput struct {
	Email         string     `json:"email"`
	Password      string     `json:"password"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	InstitutionID *uuid.UUID `json:"institution_id,omitempty"`
}

func (in RegisterInput) validate() []apperrors.FieldError {
	var fields []apperrors.FieldError
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(in.Password) < minPasswordLength {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "is required"})
	}
	if !ValidRole(in.Role) {
		fields = append(fields, apperrors.FieldError{Field: "role", Message: "must be one of admin, institution, verifier"})
	}
	return fields
}

// Register creates a user account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Profile, error) {
	if fields := in.validate(); len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to hash password")
	}

	user := &User{
		ID:            uuid.New(),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:  string(hash),
		Name:          strings.TrimSpace(in.Name),
		Role:          in.Role,
		InstitutionID: in.InstitutionID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, apperrors.New(apperrors.CodeConflict, "email is already registered")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to create user")
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	profile := ProfileOf(user)
	return &profile, nil
}

// LoginInput is the statically-typed login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the signed token and the authenticated profile.
type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Login verifies credentials and issues a signed access token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
	}

	institutionID := ""
	if user.InstitutionID != nil {
		institutionID = user.InstitutionID.String()
	}
	token, err := s.tokens.Generate(user.ID, user.Role, user.Email, institutionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to sign token")
	}

	return &LoginResult{Token: token, User: ProfileOf(user)}, nil
}

// GetMe returns the profile of the authenticated user.
func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to look up user")
	}
	profile := ProfileOf(user)
	return &profile, nil
}
