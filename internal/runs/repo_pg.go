package runs

import (
	"context"
	"database/sql"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO pipeline_runs (
	id, session_id, kind, status, generation, error_code, risk_level,
	result_count, fallbacks, duration_ms, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.SessionID,
		string(run.Kind),
		run.Status,
		int64(run.Generation),
		nullString(run.ErrorCode),
		nullString(run.RiskLevel),
		run.ResultCount,
		run.Fallbacks,
		run.DurationMs,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListBySession returns the newest runs for a session.
func (r *PGRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]Run, error) {
	const query = `
SELECT id, session_id, kind, status, generation, error_code, risk_level,
	result_count, fallbacks, duration_ms, created_at
FROM pipeline_runs
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, sessionID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run        Run
			kind       string
			generation int64
			errorCode  sql.NullString
			riskLevel  sql.NullString
		)
		if err := rows.Scan(
			&run.ID, &run.SessionID, &kind, &run.Status, &generation, &errorCode, &riskLevel,
			&run.ResultCount, &run.Fallbacks, &run.DurationMs, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Kind = Kind(kind)
		run.Generation = uint64(generation)
		run.ErrorCode = errorCode.String
		run.RiskLevel = riskLevel.String
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
