package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	SnapshotItems
	MatchTracks
	PlanMoves
	ApplyMoves
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case SnapshotItems:
		return "snapshot_items"
	case MatchTracks:
		return "match_tracks"
	case PlanMoves:
		return "plan_moves"
	case ApplyMoves:
		return "apply_moves"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", title),
	}
}

func snapshotUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SnapshotItems,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Snapshotted %d playlist items", count),
	}
}

func matchUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Matching %d imported tracks...", total),
	}
}

func planUpdate(moves int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanMoves,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Planned %d move operations", moves),
	}
}

func moveUpdate(step, total int, itemID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyMoves,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Moving item %s", step, total, itemID),
	}
}
