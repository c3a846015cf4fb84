package verification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"certiva/pkg/platform/sentinel"
)

// PostgresStore persists verification requests in PostgreSQL. Pure I/O; the
// classification policy and visibility rules live in the engine and query
// service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, req *Request) error {
	result, err := json.Marshal(req.Result)
	if err != nil {
		return fmt.Errorf("marshal result payload: %w", err)
	}
	query := `
		INSERT INTO verification_requests (id, certificate_id, requested_by, status, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		req.ID,
		req.CertificateID,
		req.RequestedBy,
		string(req.Status),
		result,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create verification request: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateClassification(ctx context.Context, id uuid.UUID, status Status, result ResultPayload) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result payload: %w", err)
	}
	// The update targets exactly the record created for this invocation.
	query := `UPDATE verification_requests SET status = $2, result = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, string(status), payload)
	if err != nil {
		return fmt.Errorf("update verification request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification request: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const selectColumns = `
	vr.id, vr.certificate_id, vr.requested_by, vr.status, vr.result, vr.created_at,
	c.certificate_number, c.student_name, c.course, c.institution_id
`

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM verification_requests vr
		LEFT JOIN certificates c ON c.id = vr.certificate_id
		WHERE vr.id = $1
	`, selectColumns)
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get verification request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) List(ctx context.Context, q ListQuery) ([]Request, int, error) {
	where, args := buildWhere(q)

	countQuery := `
		SELECT count(*)
		FROM verification_requests vr
		LEFT JOIN certificates c ON c.id = vr.certificate_id
	` + where
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count verification requests: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM verification_requests vr
		LEFT JOIN certificates c ON c.id = vr.certificate_id
		%s
		ORDER BY vr.created_at DESC, vr.id
	`, selectColumns, where)
	if q.Limit > 0 {
		listQuery += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list verification requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan verification request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list verification requests: %w", err)
	}
	return requests, total, nil
}

func (s *PostgresStore) CountForRequester(ctx context.Context, requestedBy uuid.UUID, status Status, since *time.Time) (int, error) {
	query := `SELECT count(*) FROM verification_requests WHERE requested_by = $1`
	args := []any{requestedBy}
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count requests for requester: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, requestedBy uuid.UUID, limit int) ([]Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM verification_requests vr
		LEFT JOIN certificates c ON c.id = vr.certificate_id
		WHERE vr.requested_by = $1
		ORDER BY vr.created_at DESC
		LIMIT $2
	`, selectColumns)
	rows, err := s.db.QueryContext(ctx, query, requestedBy, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent requests: %w", err)
	}
	return requests, nil
}

// buildWhere assembles the shared filter clause for List's count and page
// queries so both always agree.
func buildWhere(q ListQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if q.RequestedBy != nil {
		args = append(args, *q.RequestedBy)
		clauses = append(clauses, fmt.Sprintf("vr.requested_by = $%d", len(args)))
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, status := range q.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, pq.Array(statuses))
		clauses = append(clauses, fmt.Sprintf("vr.status = ANY($%d)", len(args)))
	}
	if q.DateFrom != nil {
		args = append(args, *q.DateFrom)
		clauses = append(clauses, fmt.Sprintf("vr.created_at >= $%d", len(args)))
	}
	if q.DateTo != nil {
		args = append(args, *q.DateTo)
		clauses = append(clauses, fmt.Sprintf("vr.created_at <= $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		clauses = append(clauses, fmt.Sprintf("c.certificate_number ILIKE $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var (
		req           Request
		result        []byte
		number        sql.NullString
		student       sql.NullString
		course        sql.NullString
		institutionID *uuid.UUID
	)
	if err := row.Scan(
		&req.ID,
		&req.CertificateID,
		&req.RequestedBy,
		&req.Status,
		&result,
		&req.CreatedAt,
		&number,
		&student,
		&course,
		&institutionID,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &req.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result payload: %w", err)
	}
	if number.Valid || student.Valid {
		req.Certificate = &CertificateRef{
			CertificateNumber: number.String,
			StudentName:       student.String,
			Course:            course.String,
			InstitutionID:     institutionID,
		}
	}
	return &req, nil
}
