package repositories

import (
	"database/sql"
	"fmt"

	"plexorder/internal/models"
)

// RunRepository records reorder run summaries for the history command.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository backed by the given database.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run summary row.
func (r *RunRepository) Create(run *models.ReorderRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid reorder run: %w", err)
	}

	_, err := r.db.Exec(
		`INSERT INTO reorder_runs
			(id, upload_id, playlist_key, playlist_title, matched, unmatched, moves_planned, moves_applied, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.UploadID, run.PlaylistKey, run.PlaylistTitle,
		run.Matched, run.Unmatched, run.MovesPlanned, run.MovesApplied, run.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reorder run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first.
func (r *RunRepository) List(limit int) ([]models.ReorderRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, upload_id, playlist_key, playlist_title, matched, unmatched,
			moves_planned, moves_applied, status, created_at
		 FROM reorder_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reorder runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ReorderRun
	for rows.Next() {
		var run models.ReorderRun
		err := rows.Scan(
			&run.ID, &run.UploadID, &run.PlaylistKey, &run.PlaylistTitle,
			&run.Matched, &run.Unmatched, &run.MovesPlanned, &run.MovesApplied,
			&run.Status, &run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reorder run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
