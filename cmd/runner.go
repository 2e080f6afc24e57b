package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"plexorder/internal/playlist"
	"plexorder/internal/services"
	"plexorder/internal/shared"
	"plexorder/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	plex       *services.PlexService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.ReorderEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Plex       *services.PlexService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	matcher := playlist.NewMatcher(nil, opts.Config.Matcher.FuzzyThreshold, opts.Config.Matcher.TitleOnlyThreshold)
	engine := tasks.NewReorderEngine(opts.Plex, matcher, opts.Config.Matcher.MoveRateLimit)

	return &Runner{
		config:     opts.Config,
		plex:       opts.Plex,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     engine,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, parseCommand, previewCommand,
		reorderCommand, historyCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. when the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// requirePlex guards actions that talk to the media server.
func (r *Runner) requirePlex() error {
	if r.plex == nil {
		return fmt.Errorf("%w: Plex base_url must be set in config.toml", shared.ErrServiceUnavailable)
	}
	if r.config.Plex.Token == "" {
		return fmt.Errorf("%w: run 'plexorder auth login' first", shared.ErrMissingToken)
	}
	return nil
}

// loadExport reads and parses a playlist export file.
func (r *Runner) loadExport(path string) (*playlist.ParseResult, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: --file", shared.ErrMissingArgument)
	}

	raw, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, err
	}

	result, err := playlist.ParseExport(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	r.logger.Info("export parsed", "file", path, "tracks", len(result.Tracks), "skipped", result.SkippedRows)
	return result, nil
}

// resolvePlaylist finds a playlist by ratingKey or exact title.
func (r *Runner) resolvePlaylist(ctx context.Context, keyOrTitle string) (*services.Playlist, error) {
	if keyOrTitle == "" {
		return nil, fmt.Errorf("%w: --playlist", shared.ErrMissingArgument)
	}

	playlists, err := r.plex.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	for i := range playlists {
		if playlists[i].Key == keyOrTitle {
			return &playlists[i], nil
		}
	}
	for i := range playlists {
		if strings.EqualFold(playlists[i].Title, keyOrTitle) {
			return &playlists[i], nil
		}
	}

	return nil, fmt.Errorf("%w: no playlist named %q", shared.ErrPlaylistNotFound, keyOrTitle)
}

// openDatabase opens the configured sqlite database and runs migrations.
// History and the HTTP server need it; pure CLI previews do not.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
