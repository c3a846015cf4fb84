package institution

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"certiva/pkg/apperrors"
	"certiva/pkg/platform/sentinel"
)

// Service manages issuing institutions. Creation is admin-only;
// the transport layer enforces the role before calling Create.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

type CreateInput struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
}

func (in CreateInput) validate() []apperrors.FieldError {
	var fields []apperrors.FieldError
	if in.Name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "name is required"})
	}
	if in.ContactEmail != "" {
		if _, err := mail.ParseAddress(in.ContactEmail); err != nil {
			fields = append(fields, apperrors.FieldError{Field: "contact_email", Message: "contact_email must be a valid email address"})
		}
	}
	return fields
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Institution, error) {
	if fields := in.validate(); len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	inst := &Institution{
		ID:           uuid.New(),
		Name:         in.Name,
		Address:      in.Address,
		ContactEmail: in.ContactEmail,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, inst); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, apperrors.New(apperrors.CodeConflict, "institution already exists")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "create institution")
	}

	s.logger.Info("institution created", "institution_id", inst.ID, "name", inst.Name)
	return inst, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Institution, error) {
	inst, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "institution not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "find institution")
	}
	return inst, nil
}

func (s *Service) List(ctx context.Context, nameFilter string) ([]Institution, error) {
	out, err := s.store.List(ctx, nameFilter)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "list institutions")
	}
	if out == nil {
		out = []Institution{}
	}
	return out, nil
}
