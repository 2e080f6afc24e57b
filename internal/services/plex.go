// Plex Media Server implementation of [MediaServer]
//
// Endpoint shapes follow https://plexapi.dev/ ; all requests ask for JSON.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"plexorder/internal/playlist"
	"plexorder/internal/shared"
)

const plexTVBaseURL = "https://plex.tv"

// plexMediaContainer is the envelope around every Plex API response.
type plexMediaContainer struct {
	MediaContainer struct {
		Size     int            `json:"size"`
		Metadata []plexMetadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

// plexMetadata covers the playlist and track fields plexorder reads.
type plexMetadata struct {
	RatingKey      string `json:"ratingKey"`
	PlaylistItemID int64  `json:"playlistItemID"`
	Title          string `json:"title"`
	PlaylistType   string `json:"playlistType"`
	Smart          bool   `json:"smart"`
	LeafCount      int    `json:"leafCount"`
	// Artist fields: grandparentTitle is the album artist; originalTitle
	// carries the track artist when it differs (compilations).
	GrandparentTitle string `json:"grandparentTitle"`
	OriginalTitle    string `json:"originalTitle"`
}

func (m plexMetadata) artist() string {
	if m.GrandparentTitle != "" {
		return m.GrandparentTitle
	}
	return m.OriginalTitle
}

// PlexService implements the [MediaServer] interface against a Plex Media
// Server using token authentication.
type PlexService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewPlexService creates a Plex client for the given server base URL and
// token. A nil client selects [http.DefaultClient].
func NewPlexService(baseURL, token string, client *http.Client) (*PlexService, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: missing Plex base URL", shared.ErrInvalidConfig)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &PlexService{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: client,
	}, nil
}

// WithToken returns a copy of the service authenticated with a different
// token. Used by the HTTP layer, where each request carries its own token.
func (s *PlexService) WithToken(token string) *PlexService {
	clone := *s
	clone.token = strings.TrimSpace(token)
	return &clone
}

func (s *PlexService) Name() string {
	return "Plex"
}

// doRequest performs an authenticated request against the Plex server and
// decodes the MediaContainer envelope when result is non-nil.
func (s *PlexService) doRequest(ctx context.Context, method, endpoint string, query url.Values, result *plexMediaContainer) error {
	if s.token == "" {
		return fmt.Errorf("%w: authenticate with 'plexorder auth login' or set plex.token", shared.ErrMissingToken)
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, endpoint)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: plex rejected the token", shared.ErrAuthFailed)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: plex API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Playlists retrieves the user's audio playlists. Smart playlists are
// excluded: their order is rule-derived and cannot be changed by moves.
func (s *PlexService) Playlists(ctx context.Context) ([]Playlist, error) {
	var container plexMediaContainer
	query := url.Values{"playlistType": {"audio"}}
	if err := s.doRequest(ctx, http.MethodGet, "/playlists", query, &container); err != nil {
		return nil, err
	}

	var playlists []Playlist
	for _, md := range container.MediaContainer.Metadata {
		if md.Smart || md.PlaylistType != "audio" {
			continue
		}
		playlists = append(playlists, Playlist{
			Key:        md.RatingKey,
			Title:      md.Title,
			TrackCount: md.LeafCount,
			Smart:      md.Smart,
		})
	}

	return playlists, nil
}

// Playlist retrieves one playlist's metadata by ratingKey.
func (s *PlexService) Playlist(ctx context.Context, key string) (*Playlist, error) {
	var container plexMediaContainer
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(key))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &container); err != nil {
		return nil, err
	}
	if len(container.MediaContainer.Metadata) == 0 {
		return nil, fmt.Errorf("%w: key %s", shared.ErrPlaylistNotFound, key)
	}

	md := container.MediaContainer.Metadata[0]
	return &Playlist{
		Key:        md.RatingKey,
		Title:      md.Title,
		TrackCount: md.LeafCount,
		Smart:      md.Smart,
	}, nil
}

// PlaylistItems snapshots a playlist's items in current server order.
func (s *PlexService) PlaylistItems(ctx context.Context, key string) ([]playlist.Item, error) {
	var container plexMediaContainer
	endpoint := fmt.Sprintf("/playlists/%s/items", url.PathEscape(key))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &container); err != nil {
		return nil, err
	}

	items := make([]playlist.Item, 0, len(container.MediaContainer.Metadata))
	for i, md := range container.MediaContainer.Metadata {
		items = append(items, playlist.Item{
			ID:       fmt.Sprintf("%d", md.PlaylistItemID),
			Title:    md.Title,
			Artist:   md.artist(),
			Position: i,
		})
	}

	return items, nil
}

// MoveItem places itemID immediately after afterID. Plex expresses the
// same anchor-relative primitive: PUT .../items/{id}/move with an optional
// "after" query parameter; omitting it moves the item to the front.
func (s *PlexService) MoveItem(ctx context.Context, key, itemID, afterID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/items/%s/move", url.PathEscape(key), url.PathEscape(itemID))

	var query url.Values
	if afterID != "" {
		query = url.Values{"after": {afterID}}
	}

	return s.doRequest(ctx, http.MethodPut, endpoint, query, nil)
}
