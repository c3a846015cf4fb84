package institution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"certiva/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists institutions in Postgres. Pure I/O; callers
// translate sentinel errors into domain errors.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, inst *Institution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO institutions (id, name, address, contact_email, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		inst.ID, inst.Name, inst.Address, inst.ContactEmail, inst.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert institution: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Institution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, contact_email, created_at
		FROM institutions
		WHERE id = $1`, id)

	var inst Institution
	err := row.Scan(&inst.ID, &inst.Name, &inst.Address, &inst.ContactEmail, &inst.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan institution: %w", err)
	}
	return &inst, nil
}

func (s *PostgresStore) List(ctx context.Context, nameFilter string) ([]Institution, error) {
	query := `
		SELECT id, name, address, contact_email, created_at
		FROM institutions`
	args := []any{}
	if nameFilter != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+nameFilter+"%")
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query institutions: %w", err)
	}
	defer rows.Close()

	var out []Institution
	for rows.Next() {
		var inst Institution
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.Address, &inst.ContactEmail, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan institution: %w", err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institutions: %w", err)
	}
	return out, nil
}
