package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"plexorder/internal/models"
	"plexorder/internal/playlist"
	"plexorder/internal/repositories"
	"plexorder/internal/services"
	"plexorder/internal/shared"
	"plexorder/internal/tasks"
)

// API bundles the dependencies behind the JSON endpoints.
type API struct {
	logger   *log.Logger
	config   *shared.Config
	plex     *services.PlexService
	uploads  *repositories.UploadRepository
	runs     *repositories.RunRepository
	sessions *PinSessions
	matcher  *playlist.Matcher
}

// NewAPI creates the API handler set.
func NewAPI(logger *log.Logger, config *shared.Config, plex *services.PlexService, uploads *repositories.UploadRepository, runs *repositories.RunRepository, sessions *PinSessions) *API {
	return &API{
		logger:   logger,
		config:   config,
		plex:     plex,
		uploads:  uploads,
		runs:     runs,
		sessions: sessions,
		matcher:  playlist.NewMatcher(nil, config.Matcher.FuzzyThreshold, config.Matcher.TitleOnlyThreshold),
	}
}

// NewRouter assembles the full route table.
func NewRouter(api *API) *BasicRouter {
	router := NewBasicRouter()
	router.Use(LoggingMiddleware(api.logger))

	router.Handle(http.MethodGet, "/health", http.HandlerFunc(api.Health))
	router.Handle(http.MethodPost, "/api/auth/plex/start", http.HandlerFunc(api.AuthStart))
	router.Handle(http.MethodGet, "/api/auth/plex/status", http.HandlerFunc(api.AuthStatus))
	router.Handle(http.MethodGet, "/api/playlists", http.HandlerFunc(api.Playlists))
	router.Handle(http.MethodPost, "/api/upload", http.HandlerFunc(api.Upload))
	router.Handle(http.MethodPost, "/api/preview", http.HandlerFunc(api.Preview))
	router.Handle(http.MethodPost, "/api/reorder", http.HandlerFunc(api.Reorder))

	return router
}

func (a *API) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, shared.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrMissingToken), errors.Is(err, shared.ErrAuthFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrServiceUnavailable):
		status = http.StatusBadGateway
	}
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// serverFor returns a Plex client bound to the request's token. The
// service may be absent entirely when no base URL is configured; the
// auth routes still work in that state, the playlist routes do not.
func (a *API) serverFor(r *http.Request) (*services.PlexService, error) {
	if a.plex == nil {
		return nil, fmt.Errorf("%w: no Plex server configured", shared.ErrServiceUnavailable)
	}
	token := strings.TrimSpace(r.Header.Get("X-Plex-Token"))
	if token == "" {
		return a.plex, nil
	}
	return a.plex.WithToken(token), nil
}

func (a *API) engineFor(r *http.Request) (*tasks.ReorderEngine, error) {
	srv, err := a.serverFor(r)
	if err != nil {
		return nil, err
	}
	return tasks.NewReorderEngine(srv, a.matcher, a.config.Matcher.MoveRateLimit), nil
}

// Health reports liveness.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AuthStart creates a plex.tv PIN session.
func (a *API) AuthStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ForwardURL string `json:"forwardUrl"`
	}
	// Body is optional; decode errors just mean no forward URL.
	_ = json.NewDecoder(r.Body).Decode(&body)

	sessionID, authURL, err := a.sessions.Start(r.Context(), strings.TrimSpace(body.ForwardURL))
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":    sessionID,
		"authUrl":      authURL,
		"expiresInSec": a.sessions.TTLSeconds(),
	})
}

// AuthStatus polls a PIN session for completion.
func (a *API) AuthStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		a.writeError(w, fmt.Errorf("%w: sessionId", shared.ErrMissingArgument))
		return
	}

	loggedIn, token, err := a.sessions.Status(r.Context(), sessionID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if !loggedIn {
		a.writeJSON(w, http.StatusOK, map[string]bool{"loggedIn": false})
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"loggedIn": true, "plexToken": token})
}

// Playlists lists the server's reorderable audio playlists.
func (a *API) Playlists(w http.ResponseWriter, r *http.Request) {
	srv, err := a.serverFor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	playlists, err := srv.Playlists(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	type entry struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Count int    `json:"count"`
	}
	entries := make([]entry, 0, len(playlists))
	for _, pl := range playlists {
		entries = append(entries, entry{ID: pl.Key, Title: pl.Title, Count: pl.TrackCount})
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"playlists": entries})
}

// Upload accepts a playlist export file, parses it, and stores the parsed
// track list under a fresh upload id.
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(a.config.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		a.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "uploaded file is too large"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, fmt.Errorf("%w: file", shared.ErrMissingArgument))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		a.writeError(w, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	parsed, err := playlist.ParseExport(raw)
	if err != nil {
		a.writeError(w, err)
		return
	}

	upload := &models.Upload{
		ID:          shared.GenerateID(),
		Filename:    header.Filename,
		Tracks:      parsed.Tracks,
		SkippedRows: parsed.SkippedRows,
	}
	if err := a.uploads.Create(upload); err != nil {
		a.writeError(w, err)
		return
	}

	sample := parsed.Tracks
	if len(sample) > 10 {
		sample = sample[:10]
	}

	a.logger.Info("export uploaded", "upload", upload.ID, "tracks", len(parsed.Tracks), "skipped", parsed.SkippedRows)
	a.writeJSON(w, http.StatusOK, map[string]any{
		"uploadId":    upload.ID,
		"tracks":      len(parsed.Tracks),
		"skippedRows": parsed.SkippedRows,
		"sample":      sample,
	})
}

type reorderRequest struct {
	UploadID   string `json:"uploadId"`
	PlaylistID string `json:"playlistId"`
	Confirm    bool   `json:"confirm"`
}

func (a *API) readReorderRequest(r *http.Request) (*reorderRequest, *models.Upload, error) {
	var body reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("%w: malformed JSON body", shared.ErrInvalidInput)
	}
	if body.UploadID == "" {
		return nil, nil, fmt.Errorf("%w: uploadId", shared.ErrMissingArgument)
	}
	if body.PlaylistID == "" {
		return nil, nil, fmt.Errorf("%w: playlistId", shared.ErrMissingArgument)
	}

	upload, err := a.uploads.Get(body.UploadID)
	if err != nil {
		return nil, nil, err
	}
	return &body, upload, nil
}

// matchReport converts a plan into the preview payload the UI renders for
// the confirmation gate.
func matchReport(plan *tasks.ReorderPlan, upload *models.Upload) map[string]any {
	type resultEntry struct {
		Title      string  `json:"title"`
		Artist     string  `json:"artist,omitempty"`
		Tier       string  `json:"tier"`
		Score      float64 `json:"score,omitempty"`
		ItemID     string  `json:"itemId,omitempty"`
		ItemTitle  string  `json:"itemTitle,omitempty"`
		ItemArtist string  `json:"itemArtist,omitempty"`
	}

	results := make([]resultEntry, 0, len(plan.Results))
	for _, res := range plan.Results {
		entry := resultEntry{
			Title:  res.Imported.Title,
			Artist: res.Imported.Artist,
			Tier:   res.Tier.String(),
			Score:  res.Score,
		}
		if res.Item != nil {
			entry.ItemID = res.Item.ID
			entry.ItemTitle = res.Item.Title
			entry.ItemArtist = res.Item.Artist
		}
		results = append(results, entry)
	}

	return map[string]any{
		"playlistTitle": plan.Playlist.Title,
		"uploadedCount": len(upload.Tracks),
		"currentCount":  len(plan.Items),
		"matched":       plan.Matched,
		"unmatched":     plan.Unmatched(),
		"skippedRows":   upload.SkippedRows,
		"movesPlanned":  len(plan.Moves),
		"results":       results,
	}
}

// Preview computes and returns the match report without mutating anything.
func (a *API) Preview(w http.ResponseWriter, r *http.Request) {
	body, upload, err := a.readReorderRequest(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	engine, err := a.engineFor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	plan, err := engine.Preview(r.Context(), nil, body.PlaylistID, upload.Tracks)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, matchReport(plan, upload))
}

// Reorder executes the planned moves. The caller must set confirm to true;
// previews are free, mutations are not.
func (a *API) Reorder(w http.ResponseWriter, r *http.Request) {
	body, upload, err := a.readReorderRequest(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !body.Confirm {
		a.writeError(w, fmt.Errorf("%w: confirm must be true to apply moves", shared.ErrInvalidInput))
		return
	}

	engine, err := a.engineFor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	plan, err := engine.Preview(r.Context(), nil, body.PlaylistID, upload.Tracks)
	if err != nil {
		a.writeError(w, err)
		return
	}

	applied, execErr := engine.Execute(r.Context(), nil, body.PlaylistID, plan.Moves)

	run := &models.ReorderRun{
		ID:            shared.GenerateID(),
		UploadID:      upload.ID,
		PlaylistKey:   plan.Playlist.Key,
		PlaylistTitle: plan.Playlist.Title,
		Matched:       plan.Matched,
		Unmatched:     plan.Unmatched(),
		MovesPlanned:  len(plan.Moves),
		MovesApplied:  applied,
		Status:        models.RunStatusCompleted,
	}
	if execErr != nil {
		run.Status = models.RunStatusPartial
		if applied == 0 {
			run.Status = models.RunStatusFailed
		}
	}
	if err := a.runs.Create(run); err != nil {
		a.logger.Error("failed to record reorder run", "error", err)
	}

	response := map[string]any{
		"runId":        run.ID,
		"status":       run.Status,
		"matched":      run.Matched,
		"unmatched":    run.Unmatched,
		"movesPlanned": run.MovesPlanned,
		"movesApplied": run.MovesApplied,
	}

	var partial *tasks.PartialExecutionError
	if errors.As(execErr, &partial) {
		response["remaining"] = partial.Remaining
		response["error"] = partial.Error()
		a.logger.Warn("reorder partially applied", "run", run.ID, "applied", applied, "remaining", partial.Remaining)
		a.writeJSON(w, http.StatusBadGateway, response)
		return
	}
	if execErr != nil {
		a.writeError(w, execErr)
		return
	}

	a.logger.Info("reorder complete", "run", run.ID, "moves", applied)
	a.writeJSON(w, http.StatusOK, response)
}
