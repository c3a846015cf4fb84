package alert

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"certiva/pkg/platform/sentinel"
)

// PostgresStore persists alerts in Postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Alert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, type, severity, message, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Type, a.Severity, a.Message, a.Resolved, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f Filters) ([]Alert, error) {
	query := `
		SELECT id, type, severity, message, resolved, created_at
		FROM alerts`
	var (
		conds []string
		args  []any
	)
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Severity != "" {
		args = append(args, f.Severity)
		conds = append(conds, fmt.Sprintf("severity = $%d", len(args)))
	}
	if f.Resolved != nil {
		args = append(args, *f.Resolved)
		conds = append(conds, fmt.Sprintf("resolved = $%d", len(args)))
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
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.Type, &a.Severity, &a.Message, &a.Resolved, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Resolve(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET resolved = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve alert rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
