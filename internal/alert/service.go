package alert

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"certiva/pkg/apperrors"
	"certiva/pkg/platform/sentinel"
)

// Service raises and lists operator alerts.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Raise records a new unresolved alert.
func (s *Service) Raise(ctx context.Context, alertType, severity, message string) (*Alert, error) {
	var fields []apperrors.FieldError
	if alertType == "" {
		fields = append(fields, apperrors.FieldError{Field: "type", Message: "type is required"})
	}
	if !ValidSeverity(severity) {
		fields = append(fields, apperrors.FieldError{Field: "severity", Message: "severity must be one of info, warning, critical"})
	}
	if message == "" {
		fields = append(fields, apperrors.FieldError{Field: "message", Message: "message is required"})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	a := &Alert{
		ID:        uuid.New(),
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "create alert")
	}

	s.logger.Warn("alert raised", "alert_id", a.ID, "type", a.Type, "severity", a.Severity)
	return a, nil
}

func (s *Service) List(ctx context.Context, f Filters) ([]Alert, error) {
	if f.Severity != "" && !ValidSeverity(f.Severity) {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "severity", Message: "unknown severity " + f.Severity})
	}
	out, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "list alerts")
	}
	if out == nil {
		out = []Alert{}
	}
	return out, nil
}

func (s *Service) Resolve(ctx context.Context, id uuid.UUID) error {
	err := s.store.Resolve(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "alert not found")
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorage, "resolve alert")
	}
	return nil
}
