package runlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wenhao/stockmind/backend/pkg/database"
)

// Repository persists run records to Postgres. Optional: the pipeline
// falls back to the JSONL writer alone when DATABASE_URL is unset.
type Repository struct {
	db *database.DB
}

// NewRepository creates a run-record repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the run_records table if needed. This is an ops
// pipeline; a full migration tool would be overkill for one table.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS run_records (
			id          BIGSERIAL PRIMARY KEY,
			identifier  TEXT        NOT NULL,
			state       TEXT        NOT NULL,
			steps       JSONB       NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create run_records table: %w", err)
	}
	return nil
}

// Save persists one batch of run records
func (r *Repository) Save(ctx context.Context, records []RunRecord) error {
	for _, rec := range records {
		steps, err := json.Marshal(rec.Steps)
		if err != nil {
			return fmt.Errorf("marshal steps: %w", err)
		}

		_, err = r.db.Pool.Exec(ctx, `
			INSERT INTO run_records (identifier, state, steps, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5)
		`, rec.Identifier, rec.State, steps, rec.StartedAt, rec.FinishedAt)
		if err != nil {
			return fmt.Errorf("insert run record for %s: %w", rec.Identifier, err)
		}
	}
	return nil
}

// ListRecent returns the most recent run records, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT identifier, state, steps, started_at, finished_at
		FROM run_records
		ORDER BY finished_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var steps []byte

		if err := rows.Scan(&rec.Identifier, &rec.State, &steps, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		if err := json.Unmarshal(steps, &rec.Steps); err != nil {
			return nil, fmt.Errorf("unmarshal steps: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
