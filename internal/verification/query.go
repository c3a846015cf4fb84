package verification

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"certiva/pkg/apperrors"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	roleVerifier = "verifier"
)

// QueryService reads the persisted verification history with role-scoped
// visibility. It does not re-check role membership; it only applies the
// narrowing filter for verifiers.
type QueryService struct {
	store Store
}

func NewQueryService(store Store) *QueryService {
	return &QueryService{store: store}
}

// List returns one page of the requester's visible history. Total is the
// exact matching-row count regardless of pagination; a page past the end
// returns empty rows with Total unchanged.
func (s *QueryService) List(ctx context.Context, requester Requester, filters Filters) (*PageResult, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	page := filters.Page
	if page < 1 {
		page = defaultPage
	}
	limit := filters.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	q := toListQuery(requester, filters)
	q.Offset = (page - 1) * limit
	q.Limit = limit

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to list verification requests")
	}
	if rows == nil {
		rows = []Request{}
	}
	return &PageResult{Rows: rows, Page: page, Limit: limit, Total: total}, nil
}

// exportHeader is the fixed column set of the CSV export.
var exportHeader = []string{"id", "status", "created_at", "certificate_number", "student_name"}

// Export applies the same filters as List but ignores pagination and encodes
// every matching row as CSV. Fields containing separators or newlines are
// quoted by the encoder.
func (s *QueryService) Export(ctx context.Context, requester Requester, filters Filters) ([]byte, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	q := toListQuery(requester, filters)
	rows, _, err := s.store.List(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to export verification requests")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode export")
	}
	for _, row := range rows {
		number, student := "", ""
		if row.Certificate != nil {
			number = row.Certificate.CertificateNumber
			student = row.Certificate.StudentName
		}
		record := []string{
			row.ID.String(),
			string(row.Status),
			row.CreatedAt.UTC().Format(time.RFC3339),
			number,
			student,
		}
		if err := w.Write(record); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode export")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode export")
	}
	return buf.Bytes(), nil
}

func validateFilters(filters Filters) error {
	var fields []apperrors.FieldError
	for _, status := range filters.Statuses {
		if !ValidStatus(status) {
			fields = append(fields, apperrors.FieldError{Field: "status", Message: "unknown status " + string(status)})
		}
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		fields = append(fields, apperrors.FieldError{Field: "dateTo", Message: "must not be before dateFrom"})
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return nil
}

// toListQuery resolves visibility: verifiers see only their own submissions.
func toListQuery(requester Requester, filters Filters) ListQuery {
	q := ListQuery{
		Statuses: filters.Statuses,
		DateFrom: filters.DateFrom,
		DateTo:   filters.DateTo,
		Search:   filters.Search,
	}
	if requester.Role == roleVerifier {
		id := requester.ID
		q.RequestedBy = &id
	}
	return q
}
