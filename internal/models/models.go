package models

import (
	"fmt"
	"time"

	"plexorder/internal/playlist"
)

// Upload is a parsed playlist export stored server-side so the
// upload → preview → reorder handshake survives process restarts.
type Upload struct {
	ID          string
	Filename    string
	Tracks      []playlist.ImportedTrack
	SkippedRows int
	CreatedAt   time.Time
}

// Validate checks the upload before persistence.
func (u *Upload) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("upload id is empty")
	}
	if len(u.Tracks) == 0 {
		return fmt.Errorf("upload %s has no tracks", u.ID)
	}
	return nil
}

// Run statuses recorded in reorder history.
const (
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// ReorderRun summarizes one executed reorder against the Plex server.
type ReorderRun struct {
	ID            string
	UploadID      string
	PlaylistKey   string
	PlaylistTitle string
	Matched       int
	Unmatched     int
	MovesPlanned  int
	MovesApplied  int
	Status        string
	CreatedAt     time.Time
}

// Validate checks the run record before persistence.
func (r *ReorderRun) Validate() error {
	if r.ID == "" || r.UploadID == "" || r.PlaylistKey == "" {
		return fmt.Errorf("reorder run is missing identifiers")
	}
	switch r.Status {
	case RunStatusCompleted, RunStatusPartial, RunStatusFailed:
		return nil
	default:
		return fmt.Errorf("unknown run status %q", r.Status)
	}
}
