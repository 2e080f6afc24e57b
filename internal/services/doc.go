// Package services defines the [MediaServer] interface for remote media
// servers that expose orderable playlists, plus the Plex implementation.
//
// The core in internal/playlist never talks to a server directly: callers
// fetch a playlist snapshot through a MediaServer, run matching and
// planning on that snapshot, and hand the planned moves back to
// [MediaServer.MoveItem] one at a time.
//
// # Plex specifics
//
// [PlexService] speaks the Plex Media Server HTTP API with JSON responses
// and X-Plex-Token authentication. Smart playlists are rule-derived and not
// manually orderable, so they are filtered out of every listing.
//
// [PinLogin] implements the plex.tv PIN flow: create a pin, send the user
// to app.plex.tv/auth, poll until the pin is claimed and carries a token.
package services
