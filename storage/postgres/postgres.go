// Package postgres provides a PostgreSQL implementation of the storage
// interface, for deployments that keep a run history.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/reviewbot/reviewbot/storage"
)

// PostgreSQL provides storage operations using PostgreSQL.
type PostgreSQL struct {
	db *sql.DB
}

// New creates a new PostgreSQL storage instance.
func New(db *sql.DB) *PostgreSQL {
	return &PostgreSQL{db: db}
}

// NewFromDSN creates a new PostgreSQL storage instance from a connection string.
func NewFromDSN(dsn string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgreSQL{db: db}, nil
}

// Close closes the database connection.
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

// Migrate creates the required database tables.
func (p *PostgreSQL) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS review_runs (
			id SERIAL PRIMARY KEY,
			owner TEXT NOT NULL,
			repo TEXT NOT NULL,
			pr_number INTEGER NOT NULL,
			model TEXT,
			finding_count INTEGER NOT NULL DEFAULT 0,
			inline_posted INTEGER NOT NULL DEFAULT 0,
			fallback_posted BOOLEAN NOT NULL DEFAULT FALSE,
			worst_severity TEXT,
			usage JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_review_runs_pr ON review_runs(owner, repo, pr_number);
	`

	_, err := p.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// StoreRun records one review run.
func (p *PostgreSQL) StoreRun(ctx context.Context, run *storage.RunRecord) error {
	query := `
		INSERT INTO review_runs (owner, repo, pr_number, model, finding_count, inline_posted, fallback_posted, worst_severity, usage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`

	_, err := p.db.ExecContext(ctx, query,
		run.Owner,
		run.Repo,
		run.PRNumber,
		run.Model,
		run.FindingCount,
		run.InlinePosted,
		run.FallbackPosted,
		run.WorstSeverity,
		usageToJSON(run.Usage),
	)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	return nil
}

// ListRunsForPR retrieves all recorded runs for a pull request, oldest first.
func (p *PostgreSQL) ListRunsForPR(ctx context.Context, owner, repo string, prNumber int) ([]*storage.RunRecord, error) {
	query := `
		SELECT id, owner, repo, pr_number, model, finding_count, inline_posted, fallback_posted, worst_severity, usage, created_at
		FROM review_runs
		WHERE owner = $1 AND repo = $2 AND pr_number = $3
		ORDER BY created_at ASC
	`

	rows, err := p.db.QueryContext(ctx, query, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*storage.RunRecord
	for rows.Next() {
		var run storage.RunRecord
		var usageJSON sql.NullString
		if err := rows.Scan(
			&run.ID,
			&run.Owner,
			&run.Repo,
			&run.PRNumber,
			&run.Model,
			&run.FindingCount,
			&run.InlinePosted,
			&run.FallbackPosted,
			&run.WorstSeverity,
			&usageJSON,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if usageJSON.Valid {
			run.Usage = usageFromJSON(usageJSON.String)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
