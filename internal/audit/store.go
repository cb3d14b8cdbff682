// Package audit stores the history of payroll runs in PostgreSQL.
//
// Only run metadata is written: file name, counts, client address and
// timing. Rows, names and SSNs never reach the database.
package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/payroll/internal/audit/migrations"
	"github.com/JonMunkholm/payroll/internal/core"
	"github.com/pressly/goose/v3"
)

const (
	// DefaultHistoryLimit is used when RecentRuns is called with limit <= 0.
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps a single history query.
	MaxHistoryLimit = 100
)

// DBTX is the subset of database/sql used by Store.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store implements core.RunRecorder over PostgreSQL.
type Store struct {
	db DBTX
}

var _ core.RunRecorder = (*Store)(nil)

// NewStore binds a Store to db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// RecordRun inserts one history entry.
func (s *Store) RecordRun(ctx context.Context, rec core.RunRecord) error {
	query := `
		INSERT INTO payroll_runs
			(id, file_name, decoded, kept, overrides_applied, decode_errors,
			 ip_address, user_agent, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.FileName, rec.Decoded, rec.Kept, rec.OverridesApplied, rec.DecodeErrors,
		rec.IPAddress, rec.UserAgent, rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payroll run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	query := `
		SELECT id, file_name, decoded, kept, overrides_applied, decode_errors,
		       ip_address, user_agent, duration_ms, created_at
		FROM payroll_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select payroll runs: %w", err)
	}
	defer rows.Close()

	var result []core.RunRecord
	for rows.Next() {
		var rec core.RunRecord
		if err := rows.Scan(
			&rec.ID, &rec.FileName, &rec.Decoded, &rec.Kept, &rec.OverridesApplied, &rec.DecodeErrors,
			&rec.IPAddress, &rec.UserAgent, &rec.DurationMS, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payroll run: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payroll runs: %w", err)
	}
	return result, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
