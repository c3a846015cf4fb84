package certificate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// PostgresStore persists certificates in Postgres. Pure I/O; callers
// translate sentinel errors into domain errors.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const certificateColumns = `id, institution_id, certificate_number, student_name,
	roll_number, course, issued_date, file_url, status, created_at`

func (s *PostgresStore) Create(ctx context.Context, cert *Certificate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cert.ID, cert.InstitutionID, cert.CertificateNumber, cert.StudentName,
		nullString(cert.RollNumber), nullString(cert.Course), cert.IssuedDate,
		nullString(cert.FileURL), cert.Status, cert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, institutionID uuid.UUID, cert *Certificate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE certificates
		SET certificate_number = $1, student_name = $2, roll_number = $3,
			course = $4, issued_date = $5, file_url = $6, status = $7
		WHERE id = $8 AND institution_id = $9`,
		cert.CertificateNumber, cert.StudentName, nullString(cert.RollNumber),
		nullString(cert.Course), cert.IssuedDate, nullString(cert.FileURL),
		cert.Status, cert.ID, institutionID,
	)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update certificate rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Certificate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+certificateColumns+`
		FROM certificates
		WHERE id = $1`, id)
	return scanCertificate(row)
}

func (s *PostgresStore) List(ctx context.Context, f Filters) ([]Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates`
	var (
		conds []string
		args  []any
	)
	if f.InstitutionID != uuid.Nil {
		args = append(args, f.InstitutionID)
		conds = append(conds, fmt.Sprintf("institution_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()

	var out []Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AddSubjects(ctx context.Context, subjects []Subject) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin subjects tx: %w", err)
	}
	defer tx.Rollback()

	for _, sub := range subjects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO certificate_subjects (id, certificate_id, subject, marks)
			VALUES ($1, $2, $3, $4)`,
			sub.ID, sub.CertificateID, sub.Subject, nullString(sub.Marks),
		)
		if err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit subjects tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateSubject(ctx context.Context, subject *Subject) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE certificate_subjects
		SET subject = $1, marks = $2
		WHERE id = $3`,
		subject.Subject, nullString(subject.Marks), subject.ID,
	)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subject rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListSubjects(ctx context.Context, certificateID uuid.UUID) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, certificate_id, subject, marks
		FROM certificate_subjects
		WHERE certificate_id = $1
		ORDER BY subject`, certificateID)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	var out []Subject
	for rows.Next() {
		var sub Subject
		var marks sql.NullString
		if err := rows.Scan(&sub.ID, &sub.CertificateID, &sub.Subject, &marks); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		sub.Marks = marks.String
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*Certificate, error) {
	var (
		cert       Certificate
		rollNumber sql.NullString
		course     sql.NullString
		issuedDate sql.NullTime
		fileURL    sql.NullString
	)
	err := row.Scan(
		&cert.ID, &cert.InstitutionID, &cert.CertificateNumber, &cert.StudentName,
		&rollNumber, &course, &issuedDate, &fileURL, &cert.Status, &cert.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan certificate: %w", err)
	}
	cert.RollNumber = rollNumber.String
	cert.Course = course.String
	if issuedDate.Valid {
		t := issuedDate.Time
		cert.IssuedDate = &t
	}
	cert.FileURL = fileURL.String
	return &cert, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
