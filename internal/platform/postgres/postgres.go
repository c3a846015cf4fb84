package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the schema. Statements are idempotent so startup can run
// them unconditionally.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		institution_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS institutions (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		contact_email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS certificates (
		id UUID PRIMARY KEY,
		institution_id UUID,
		certificate_number TEXT NOT NULL,
		student_name TEXT NOT NULL,
		roll_number TEXT,
		course TEXT,
		issued_date DATE,
		file_url TEXT,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS certificate_subjects (
		id UUID PRIMARY KEY,
		certificate_id UUID NOT NULL REFERENCES certificates(id),
		subject TEXT NOT NULL,
		marks TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS verification_requests (
		id UUID PRIMARY KEY,
		certificate_id UUID REFERENCES certificates(id),
		requested_by UUID NOT NULL,
		status TEXT NOT NULL,
		result JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS verification_requests_requested_by_idx
		ON verification_requests (requested_by, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS certificate_hashes (
		certificate_id UUID PRIMARY KEY,
		hash TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_id UUID,
		action TEXT NOT NULL,
		table_name TEXT,
		record_id TEXT,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id UUID PRIMARY KEY,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}
