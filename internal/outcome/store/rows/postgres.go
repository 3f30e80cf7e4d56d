package rows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"keydesk/internal/outcome"
	"keydesk/pkg/platform/sentinel"
)

// Postgres persists rows in the intake_rows table, one row per intake event
// keyed by row index.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the intake_rows table when it does not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS intake_rows (
			row_index       INTEGER PRIMARY KEY,
			email           TEXT NOT NULL DEFAULT '',
			expiry_text     TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL DEFAULT '',
			credential_name TEXT NOT NULL DEFAULT '',
			expires_at      TEXT NOT NULL DEFAULT '',
			error_detail    TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create intake_rows table: %w", err)
	}
	return nil
}

// Seed places the intake-side columns for a row.
func (s *Postgres) Seed(ctx context.Context, row int, email, expiryText string) error {
	query := `
		INSERT INTO intake_rows (row_index, email, expiry_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (row_index) DO UPDATE SET email = $2, expiry_text = $3
	`
	if _, err := s.db.ExecContext(ctx, query, row, email, expiryText); err != nil {
		return fmt.Errorf("seed intake row: %w", err)
	}
	return nil
}

func (s *Postgres) Email(ctx context.Context, row int) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx, `SELECT email FROM intake_rows WHERE row_index = $1`, row).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read intake row email: %w", err)
	}
	return email, nil
}

func (s *Postgres) ExpiryText(ctx context.Context, row int) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT expiry_text FROM intake_rows WHERE row_index = $1`, row).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read intake row expiry text: %w", err)
	}
	return text, nil
}

func (s *Postgres) WriteOutcome(ctx context.Context, row int, o outcome.RowOutcome) error {
	query := `
		INSERT INTO intake_rows (row_index, status, credential_name, expires_at, error_detail)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (row_index) DO UPDATE SET
			status = $2,
			credential_name = $3,
			expires_at = $4,
			error_detail = $5
	`
	_, err := s.db.ExecContext(ctx, query, row, string(o.Status), o.CredentialName, o.ExpiresAt, o.ErrorDetail)
	if err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	return nil
}

func (s *Postgres) WriteStatus(ctx context.Context, row int, annotated string) error {
	query := `
		INSERT INTO intake_rows (row_index, status)
		VALUES ($1, $2)
		ON CONFLICT (row_index) DO UPDATE SET status = $2
	`
	if _, err := s.db.ExecContext(ctx, query, row, annotated); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

func (s *Postgres) FieldCapacity() int {
	return outcome.FieldCount
}
