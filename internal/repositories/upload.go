package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"plexorder/internal/models"
	"plexorder/internal/playlist"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

// UploadRepository persists parsed playlist exports. Track lists are
// stored as a JSON column; they are only ever read back whole and in
// order, so relational decomposition buys nothing.
type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository creates an UploadRepository backed by the given database.
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new upload row.
func (r *UploadRepository) Create(upload *models.Upload) error {
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("invalid upload: %w", err)
	}

	tracksJSON, err := json.Marshal(upload.Tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal tracks: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO uploads (id, filename, track_count, skipped_rows, tracks_json) VALUES (?, ?, ?, ?, ?)`,
		upload.ID, upload.Filename, len(upload.Tracks), upload.SkippedRows, string(tracksJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	return nil
}

// Get retrieves an upload by id, including its ordered track list.
func (r *UploadRepository) Get(id string) (*models.Upload, error) {
	row := r.db.QueryRow(
		`SELECT id, filename, skipped_rows, tracks_json, created_at FROM uploads WHERE id = ?`, id,
	)

	var upload models.Upload
	var tracksJSON string
	err := row.Scan(&upload.ID, &upload.Filename, &upload.SkippedRows, &tracksJSON, &upload.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: upload %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload: %w", err)
	}

	var tracks []playlist.ImportedTrack
	if err := json.Unmarshal([]byte(tracksJSON), &tracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracks: %w", err)
	}
	upload.Tracks = tracks

	return &upload, nil
}

// Delete removes an upload by id.
func (r *UploadRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: upload %s", ErrNotFound, id)
	}
	return nil
}
