package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SaveStageResult upserts the JSON result of one pipeline stage for a
// posting. Reruns overwrite the previous checkpoint for the same stage.
func (db *DB) SaveStageResult(ctx context.Context, postingID, stage string, payload any) error {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO stage_checkpoints (posting_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (posting_id, stage) DO UPDATE SET content = $3, created_at = NOW()`,
		postingID, stage, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadStageResult reads a stage checkpoint into out. The first return is
// false when no checkpoint exists for the (posting, stage) pair.
func (db *DB) LoadStageResult(ctx context.Context, postingID, stage string, out any) (bool, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM stage_checkpoints WHERE posting_id = $1 AND stage = $2`,
		postingID, stage,
	).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := json.Unmarshal(content, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return true, nil
}

// DeleteCheckpoints removes every checkpoint for a posting, forcing the
// next run to start from scratch.
func (db *DB) DeleteCheckpoints(ctx context.Context, postingID string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM stage_checkpoints WHERE posting_id = $1`,
		postingID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoints: %w", err)
	}
	return nil
}
