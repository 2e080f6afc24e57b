package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingToken  = fmt.Errorf("missing Plex token")

	// Authentication errors
	ErrAuthFailed      = fmt.Errorf("authentication failed")
	ErrAuthPending     = fmt.Errorf("authorization pending")
	ErrSessionNotFound = fmt.Errorf("auth session not found or expired")
	ErrTimeout         = fmt.Errorf("operation timed out")

	// Import parsing errors
	ErrEncoding          = fmt.Errorf("undecodable input")
	ErrEmptyPlaylist     = fmt.Errorf("no tracks parsed from input")
	ErrUnsupportedFormat = fmt.Errorf("unsupported playlist export format")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrSmartPlaylist      = fmt.Errorf("smart playlists cannot be reordered")
	ErrNoCandidates       = fmt.Errorf("server playlist has no reorderable items")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
