package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/profile-audit/internal/repository/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS audit_runs (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL,
		location_id          TEXT NOT NULL,
		overall              INTEGER NOT NULL,
		score_json           TEXT NOT NULL,
		series_json          TEXT NOT NULL,
		recommendations_json TEXT NOT NULL,
		insight              TEXT NOT NULL DEFAULT '',
		date_start           TEXT NOT NULL,
		date_end             TEXT NOT NULL,
		created_at           TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_runs_location_created
		ON audit_runs (location_id, created_at DESC);
`

type AuditRunRepository struct {
	db *sql.DB
}

func NewAuditRunRepository(db *sql.DB) *AuditRunRepository {
	return &AuditRunRepository{db: db}
}

// EnsureSchema creates the audit_runs table when missing.
func (r *AuditRunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit_runs schema: %w", err)
	}
	return nil
}

// SaveRun writes a run once. Saving an id that already exists is a no-op, so
// redelivered records are harmless.
func (r *AuditRunRepository) SaveRun(ctx context.Context, run models.AuditRunRecord) error {
	const query = `
		INSERT OR IGNORE INTO audit_runs (
			id, user_id, location_id, overall, score_json, series_json,
			recommendations_json, insight, date_start, date_end, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.UserID,
		run.LocationID,
		run.Overall,
		string(run.ScoreJSON),
		string(run.SeriesJSON),
		string(run.RecommendationsJSON),
		run.Insight,
		run.DateStart,
		run.DateEnd,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("exec SaveRun: %w", err)
	}
	return nil
}

// ListRuns returns the newest runs for a location.
func (r *AuditRunRepository) ListRuns(ctx context.Context, locationID string, limit int) ([]models.AuditRunRecord, error) {
	const query = `
		SELECT id, user_id, location_id, overall, score_json, series_json,
		       recommendations_json, insight, date_start, date_end, created_at
		FROM audit_runs
		WHERE location_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`

	if limit <= 0 {
		limit = 1
	}

	rows, err := r.db.QueryContext(ctx, query, locationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ListRuns: %w", err)
	}
	defer rows.Close()

	var results []models.AuditRunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ListRuns row: %w", err)
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListRuns: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (models.AuditRunRecord, error) {
	var rec models.AuditRunRecord
	var score, series, recommendations string
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.LocationID,
		&rec.Overall,
		&score,
		&series,
		&recommendations,
		&rec.Insight,
		&rec.DateStart,
		&rec.DateEnd,
		&rec.CreatedAt,
	)
	if err != nil {
		return models.AuditRunRecord{}, err
	}
	rec.ScoreJSON = []byte(score)
	rec.SeriesJSON = []byte(series)
	rec.RecommendationsJSON = []byte(recommendations)
	return rec, nil
}
