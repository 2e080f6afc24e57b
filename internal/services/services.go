package services

import (
	"context"

	"plexorder/internal/playlist"
)

// MediaServer defines the operations plexorder needs from a remote media
// server: list orderable playlists, snapshot a playlist's items, and move
// one item relative to another.
type MediaServer interface {
	// Playlists retrieves the user's audio playlists, excluding smart
	// playlists (rule-derived, not manually orderable).
	Playlists(ctx context.Context) ([]Playlist, error)

	// Playlist retrieves a single playlist's metadata by its key.
	Playlist(ctx context.Context, key string) (*Playlist, error)

	// PlaylistItems snapshots the playlist's items in current order.
	PlaylistItems(ctx context.Context, key string) ([]playlist.Item, error)

	// MoveItem places itemID immediately after afterID within the playlist.
	// An empty afterID moves the item to the front.
	MoveItem(ctx context.Context, key, itemID, afterID string) error

	// Name returns the name of the service (e.g. "Plex")
	Name() string
}

// Playlist represents a playlist on the media server.
type Playlist struct {
	Key        string // stable identifier (Plex ratingKey)
	Title      string
	TrackCount int
	Smart      bool
}
