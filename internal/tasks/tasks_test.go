package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"plexorder/internal/playlist"
	"plexorder/internal/services"
	"plexorder/internal/shared"
)

// mockServer implements [services.MediaServer] with an in-memory playlist.
// MoveItem mutates the order so tests can assert the final arrangement.
type mockServer struct {
	playlist  services.Playlist
	order     []string
	titles    map[string]playlist.Item
	failOn    string // item id whose move fails
	moveCalls int
}

func (m *mockServer) Name() string { return "mock" }

func (m *mockServer) Playlists(ctx context.Context) ([]services.Playlist, error) {
	return []services.Playlist{m.playlist}, nil
}

func (m *mockServer) Playlist(ctx context.Context, key string) (*services.Playlist, error) {
	if key != m.playlist.Key {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, key)
	}
	pl := m.playlist
	return &pl, nil
}

func (m *mockServer) PlaylistItems(ctx context.Context, key string) ([]playlist.Item, error) {
	items := make([]playlist.Item, len(m.order))
	for i, id := range m.order {
		item := m.titles[id]
		item.ID = id
		item.Position = i
		items[i] = item
	}
	return items, nil
}

func (m *mockServer) MoveItem(ctx context.Context, key, itemID, afterID string) error {
	m.moveCalls++
	if itemID == m.failOn {
		return fmt.Errorf("%w: simulated failure", shared.ErrAPIRequest)
	}
	m.order = playlist.ApplyMoves(m.order, []playlist.MoveOperation{{ItemID: itemID, AfterID: afterID}})
	return nil
}

func newMockServer(tracks map[string]playlist.Item, order ...string) *mockServer {
	return &mockServer{
		playlist: services.Playlist{Key: "100", Title: "Road Trip", TrackCount: len(order)},
		order:    order,
		titles:   tracks,
	}
}

func testTracks() map[string]playlist.Item {
	return map[string]playlist.Item{
		"a": {Title: "Hey Jude", Artist: "The Beatles"},
		"b": {Title: "Halo", Artist: "Beyoncé"},
		"c": {Title: "Mr. Brightside", Artist: "The Killers"},
	}
}

func importedOrder() []playlist.ImportedTrack {
	return []playlist.ImportedTrack{
		{Title: "Hey Jude", Artist: "The Beatles"},
		{Title: "Halo", Artist: "Beyoncé"},
		{Title: "Mr. Brightside", Artist: "The Killers"},
	}
}

func TestEnginePreview(t *testing.T) {
	t.Run("PlansMovesWithoutMutating", func(t *testing.T) {
		server := newMockServer(testTracks(), "b", "a", "c")
		engine := NewReorderEngine(server, nil, 0)

		plan, err := engine.Preview(context.Background(), nil, "100", importedOrder())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.Matched != 3 || plan.Unmatched() != 0 {
			t.Errorf("expected 3 matches, got %d/%d", plan.Matched, plan.Unmatched())
		}
		if len(plan.Moves) == 0 {
			t.Error("out-of-order playlist should need moves")
		}
		if server.moveCalls != 0 {
			t.Errorf("preview must not mutate, saw %d move calls", server.moveCalls)
		}
	})

	t.Run("EmptyImport", func(t *testing.T) {
		engine := NewReorderEngine(newMockServer(testTracks(), "a"), nil, 0)
		if _, err := engine.Preview(context.Background(), nil, "100", nil); !errors.Is(err, shared.ErrEmptyPlaylist) {
			t.Errorf("expected ErrEmptyPlaylist, got %v", err)
		}
	})

	t.Run("SmartPlaylistRejected", func(t *testing.T) {
		server := newMockServer(testTracks(), "a", "b")
		server.playlist.Smart = true
		engine := NewReorderEngine(server, nil, 0)

		if _, err := engine.Preview(context.Background(), nil, "100", importedOrder()); !errors.Is(err, shared.ErrSmartPlaylist) {
			t.Errorf("expected ErrSmartPlaylist, got %v", err)
		}
	})

	t.Run("EmptyPlaylistHasNoCandidates", func(t *testing.T) {
		server := newMockServer(testTracks())
		engine := NewReorderEngine(server, nil, 0)

		if _, err := engine.Preview(context.Background(), nil, "100", importedOrder()); !errors.Is(err, shared.ErrNoCandidates) {
			t.Errorf("expected ErrNoCandidates, got %v", err)
		}
	})

	t.Run("ProgressUpdatesEmitted", func(t *testing.T) {
		server := newMockServer(testTracks(), "b", "a", "c")
		engine := NewReorderEngine(server, nil, 0)

		progress := make(chan ProgressUpdate, 16)
		if _, err := engine.Preview(context.Background(), progress, "100", importedOrder()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		phases := map[Phase]bool{}
		for update := range progress {
			phases[update.Phase] = true
		}
		for _, phase := range []Phase{FetchPlaylist, SnapshotItems, MatchTracks, PlanMoves} {
			if !phases[phase] {
				t.Errorf("missing progress phase %s", phase)
			}
		}
	})
}

func TestEngineExecute(t *testing.T) {
	t.Run("AppliesPlanInOrder", func(t *testing.T) {
		server := newMockServer(testTracks(), "c", "b", "a")
		engine := NewReorderEngine(server, nil, 0)

		plan, err := engine.Preview(context.Background(), nil, "100", importedOrder())
		if err != nil {
			t.Fatalf("preview failed: %v", err)
		}

		applied, err := engine.Execute(context.Background(), nil, "100", plan.Moves)
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if applied != len(plan.Moves) {
			t.Errorf("expected %d applied, got %d", len(plan.Moves), applied)
		}

		want := []string{"a", "b", "c"}
		for i, id := range want {
			if server.order[i] != id {
				t.Fatalf("final order wrong: %v", server.order)
			}
		}
	})

	t.Run("PartialFailure", func(t *testing.T) {
		// Three moves; the second fails. One applied, one never attempted.
		server := newMockServer(testTracks(), "c", "b", "a")
		server.failOn = "move2"
		moves := []playlist.MoveOperation{
			{ItemID: "b", AfterID: "a"},
			{ItemID: "move2", AfterID: "b"},
			{ItemID: "c", AfterID: "move2"},
		}
		engine := NewReorderEngine(server, nil, 0)

		applied, err := engine.Execute(context.Background(), nil, "100", moves)
		if applied != 1 {
			t.Errorf("expected 1 applied, got %d", applied)
		}

		var partial *PartialExecutionError
		if !errors.As(err, &partial) {
			t.Fatalf("expected PartialExecutionError, got %v", err)
		}
		if partial.Applied != 1 || partial.Remaining != 1 {
			t.Errorf("wrong accounting: applied=%d remaining=%d", partial.Applied, partial.Remaining)
		}
		if partial.Failed.ItemID != "move2" {
			t.Errorf("wrong failed op: %+v", partial.Failed)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("underlying cause should unwrap, got %v", err)
		}
		if server.moveCalls != 2 {
			t.Errorf("third move must never be attempted, saw %d calls", server.moveCalls)
		}
	})

	t.Run("NoMovesIsANoop", func(t *testing.T) {
		server := newMockServer(testTracks(), "a", "b", "c")
		engine := NewReorderEngine(server, nil, 0)

		applied, err := engine.Execute(context.Background(), nil, "100", nil)
		if err != nil || applied != 0 {
			t.Errorf("expected clean no-op, got applied=%d err=%v", applied, err)
		}
	})

	t.Run("NilServer", func(t *testing.T) {
		engine := NewReorderEngine(nil, nil, 0)
		if _, err := engine.Execute(context.Background(), nil, "100", []playlist.MoveOperation{{ItemID: "a"}}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
