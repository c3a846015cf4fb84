package certificate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"certiva/pkg/apperrors"
	"certiva/pkg/platform/sentinel"
)

const issuedDateLayout = "2006-01-02"

// Service manages certificates on behalf of institution users. Every
// mutating call is scoped to the caller's institution; certificates
// owned elsewhere surface as not found.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

type CreateInput struct {
	CertificateNumber string `json:"certificate_number"`
	StudentName       string `json:"student_name"`
	RollNumber        string `json:"roll_number"`
	Course            string `json:"course"`
	IssuedDate        string `json:"issued_date"`
	FileURL           string `json:"file_url"`
}

func (in CreateInput) validate() ([]apperrors.FieldError, *time.Time) {
	var fields []apperrors.FieldError
	if in.CertificateNumber == "" {
		fields = append(fields, apperrors.FieldError{Field: "certificate_number", Message: "certificate_number is required"})
	}
	if in.StudentName == "" {
		fields = append(fields, apperrors.FieldError{Field: "student_name", Message: "student_name is required"})
	}
	var issued *time.Time
	if in.IssuedDate != "" {
		t, err := time.Parse(issuedDateLayout, in.IssuedDate)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: "issued_date", Message: "issued_date must be YYYY-MM-DD"})
		} else {
			issued = &t
		}
	}
	return fields, issued
}

func (s *Service) Create(ctx context.Context, institutionID uuid.UUID, in CreateInput) (*Certificate, error) {
	fields, issued := in.validate()
	if institutionID == uuid.Nil {
		fields = append(fields, apperrors.FieldError{Field: "institution_id", Message: "caller has no institution"})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	cert := &Certificate{
		ID:                uuid.New(),
		InstitutionID:     institutionID,
		CertificateNumber: in.CertificateNumber,
		StudentName:       in.StudentName,
		RollNumber:        in.RollNumber,
		Course:            in.Course,
		IssuedDate:        issued,
		FileURL:           in.FileURL,
		Status:            StatusPending,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.Create(ctx, cert); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "create certificate")
	}

	s.logger.Info("certificate created",
		"certificate_id", cert.ID,
		"institution_id", institutionID,
		"certificate_number", cert.CertificateNumber,
	)
	return cert, nil
}

type UpdateInput struct {
	CertificateNumber string `json:"certificate_number"`
	StudentName       string `json:"student_name"`
	RollNumber        string `json:"roll_number"`
	Course            string `json:"course"`
	IssuedDate        string `json:"issued_date"`
	FileURL           string `json:"file_url"`
	Status            string `json:"status"`
}

func (s *Service) Update(ctx context.Context, institutionID, certificateID uuid.UUID, in UpdateInput) (*Certificate, error) {
	fields, issued := CreateInput{
		CertificateNumber: in.CertificateNumber,
		StudentName:       in.StudentName,
		IssuedDate:        in.IssuedDate,
	}.validate()
	if in.Status == "" || !ValidStatus(in.Status) {
		fields = append(fields, apperrors.FieldError{Field: "status", Message: "status must be one of PENDING, ACTIVE, REVOKED"})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	cert := &Certificate{
		ID:                certificateID,
		InstitutionID:     institutionID,
		CertificateNumber: in.CertificateNumber,
		StudentName:       in.StudentName,
		RollNumber:        in.RollNumber,
		Course:            in.Course,
		IssuedDate:        issued,
		FileURL:           in.FileURL,
		Status:            in.Status,
	}
	if err := s.store.Update(ctx, institutionID, cert); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "certificate not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "update certificate")
	}
	return s.Get(ctx, certificateID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Certificate, error) {
	cert, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "certificate not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "find certificate")
	}
	return cert, nil
}

func (s *Service) List(ctx context.Context, f Filters) ([]Certificate, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "status", Message: "unknown status " + f.Status})
	}
	out, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "list certificates")
	}
	if out == nil {
		out = []Certificate{}
	}
	return out, nil
}

type SubjectInput struct {
	Subject string `json:"subject"`
	Marks   string `json:"marks"`
}

// AddSubjects appends subject rows to a certificate owned by institutionID.
func (s *Service) AddSubjects(ctx context.Context, institutionID, certificateID uuid.UUID, inputs []SubjectInput) ([]Subject, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "subjects", Message: "at least one subject is required"})
	}
	for _, in := range inputs {
		if in.Subject == "" {
			return nil, apperrors.Validation(apperrors.FieldError{Field: "subject", Message: "subject is required"})
		}
	}

	if _, err := s.ownedCertificate(ctx, institutionID, certificateID); err != nil {
		return nil, err
	}

	subjects := make([]Subject, 0, len(inputs))
	for _, in := range inputs {
		subjects = append(subjects, Subject{
			ID:            uuid.New(),
			CertificateID: certificateID,
			Subject:       in.Subject,
			Marks:         in.Marks,
		})
	}
	if err := s.store.AddSubjects(ctx, subjects); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "add subjects")
	}
	return subjects, nil
}

func (s *Service) UpdateSubject(ctx context.Context, institutionID, certificateID, subjectID uuid.UUID, in SubjectInput) (*Subject, error) {
	if in.Subject == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "subject", Message: "subject is required"})
	}
	if _, err := s.ownedCertificate(ctx, institutionID, certificateID); err != nil {
		return nil, err
	}

	subject := &Subject{
		ID:            subjectID,
		CertificateID: certificateID,
		Subject:       in.Subject,
		Marks:         in.Marks,
	}
	if err := s.store.UpdateSubject(ctx, subject); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "subject not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "update subject")
	}
	return subject, nil
}

func (s *Service) ListSubjects(ctx context.Context, certificateID uuid.UUID) ([]Subject, error) {
	if _, err := s.Get(ctx, certificateID); err != nil {
		return nil, err
	}
	out, err := s.store.ListSubjects(ctx, certificateID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "list subjects")
	}
	if out == nil {
		out = []Subject{}
	}
	return out, nil
}

func (s *Service) ownedCertificate(ctx context.Context, institutionID, certificateID uuid.UUID) (*Certificate, error) {
	cert, err := s.Get(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	if cert.InstitutionID != institutionID {
		return nil, apperrors.New(apperrors.CodeNotFound, "certificate not found")
	}
	return cert, nil
}
