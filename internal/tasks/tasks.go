package tasks

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"plexorder/internal/playlist"
	"plexorder/internal/services"
	"plexorder/internal/shared"
)

// ReorderPlan is everything a caller needs to preview and then execute a
// reorder: the match report and the planned moves, derived from a single
// consistent snapshot of the server playlist.
type ReorderPlan struct {
	Playlist *services.Playlist       // target playlist metadata
	Items    []playlist.Item          // server snapshot at preview time
	Results  []playlist.MatchResult   // one per imported track, import order
	Moves    []playlist.MoveOperation // apply strictly in this order
	Matched  int                      // results with a server item
}

// Unmatched counts imported tracks without a server match.
func (p *ReorderPlan) Unmatched() int { return len(p.Results) - p.Matched }

// PartialExecutionError reports a move sequence that failed partway
// through. The playlist is left in whatever partial order resulted;
// nothing is retried automatically.
type PartialExecutionError struct {
	Applied   int                    // operations that succeeded before the failure
	Remaining int                    // operations never attempted
	Failed    playlist.MoveOperation // the operation that failed
	Err       error
}

func (e *PartialExecutionError) Error() string {
	return fmt.Sprintf("reorder aborted after %d of %d moves: moving item %s failed: %v",
		e.Applied, e.Applied+1+e.Remaining, e.Failed.ItemID, e.Err)
}

func (e *PartialExecutionError) Unwrap() error { return e.Err }

// ReorderEngine runs preview and execution against a [services.MediaServer].
type ReorderEngine struct {
	server  services.MediaServer
	matcher *playlist.Matcher
	limiter *rate.Limiter
}

// NewReorderEngine creates an engine. A nil matcher selects the default
// thresholds; movesPerSecond caps the rate of server mutations (<= 0
// disables limiting).
func NewReorderEngine(server services.MediaServer, matcher *playlist.Matcher, movesPerSecond float64) *ReorderEngine {
	if matcher == nil {
		matcher = playlist.NewMatcher(nil, 0, 0)
	}

	var limiter *rate.Limiter
	if movesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(movesPerSecond), 1)
	}

	return &ReorderEngine{server: server, matcher: matcher, limiter: limiter}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ReorderEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Preview snapshots the playlist, matches the imported tracks against it,
// and plans the moves. It performs no server mutations.
func (e *ReorderEngine) Preview(ctx context.Context, progress chan<- ProgressUpdate, key string, imported []playlist.ImportedTrack) (*ReorderPlan, error) {
	if e.server == nil {
		return nil, fmt.Errorf("%w: media server not initialized", shared.ErrServiceUnavailable)
	}
	if len(imported) == 0 {
		return nil, shared.ErrEmptyPlaylist
	}

	pl, err := e.server.Playlist(ctx, key)
	if err != nil {
		return nil, err
	}
	if pl.Smart {
		return nil, fmt.Errorf("%w: %s", shared.ErrSmartPlaylist, pl.Title)
	}
	e.sendProgress(progress, fetchPlaylistUpdate(pl.Title))

	items, err := e.server.PlaylistItems(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: playlist %s is empty", shared.ErrNoCandidates, pl.Title)
	}
	e.sendProgress(progress, snapshotUpdate(len(items)))

	e.sendProgress(progress, matchUpdate(0, len(imported)))
	results := e.matcher.Match(imported, items)

	matched := 0
	for _, r := range results {
		if r.Matched() {
			matched++
		}
	}

	moves := playlist.PlanMoves(results, items)
	e.sendProgress(progress, planUpdate(len(moves)))

	return &ReorderPlan{
		Playlist: pl,
		Items:    items,
		Results:  results,
		Moves:    moves,
		Matched:  matched,
	}, nil
}

// Execute applies the planned moves strictly in order, one at a time, each
// awaited to completion before the next is issued. A failed move aborts
// the remainder and returns a [*PartialExecutionError]; the count of
// applied operations is returned either way.
func (e *ReorderEngine) Execute(ctx context.Context, progress chan<- ProgressUpdate, key string, moves []playlist.MoveOperation) (int, error) {
	if e.server == nil {
		return 0, fmt.Errorf("%w: media server not initialized", shared.ErrServiceUnavailable)
	}

	for i, move := range moves {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return i, &PartialExecutionError{
					Applied:   i,
					Remaining: len(moves) - i - 1,
					Failed:    move,
					Err:       err,
				}
			}
		}

		e.sendProgress(progress, moveUpdate(i+1, len(moves), move.ItemID))

		if err := e.server.MoveItem(ctx, key, move.ItemID, move.AfterID); err != nil {
			return i, &PartialExecutionError{
				Applied:   i,
				Remaining: len(moves) - i - 1,
				Failed:    move,
				Err:       err,
			}
		}
	}

	return len(moves), nil
}
