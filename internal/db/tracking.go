package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/jobfit-pipeline/internal/pipeline"
)

// UpsertOutcome writes the tracking row for a posting. The row is keyed by
// posting ID, so reprocessing the same posting is idempotent.
func (db *DB) UpsertOutcome(ctx context.Context, o pipeline.Outcome) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_outcomes (posting_id, overall_score, interview_probability, recommendation, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (posting_id) DO UPDATE SET
		     overall_score = $2,
		     interview_probability = $3,
		     recommendation = $4,
		     status = $5,
		     updated_at = NOW()`,
		o.PostingID, o.OverallScore, o.InterviewProbability, string(o.Recommendation), o.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert outcome: %w", err)
	}
	return nil
}

// OutcomeRow is one row of the tracking table.
type OutcomeRow struct {
	PostingID            string
	OverallScore         int
	InterviewProbability int
	Recommendation       string
	Status               string
	UpdatedAt            time.Time
}

// ListOutcomes returns tracking rows ordered by score descending, capped
// at limit when limit is positive.
func (db *DB) ListOutcomes(ctx context.Context, limit int) ([]OutcomeRow, error) {
	query := `SELECT posting_id, overall_score, interview_probability, recommendation, status, updated_at
		 FROM job_outcomes ORDER BY overall_score DESC, posting_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeRow
	for rows.Next() {
		var row OutcomeRow
		if err := rows.Scan(&row.PostingID, &row.OverallScore, &row.InterviewProbability, &row.Recommendation, &row.Status, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
