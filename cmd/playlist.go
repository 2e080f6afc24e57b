package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"plexorder/internal/formatter"
	"plexorder/internal/models"
	"plexorder/internal/playlist"
	"plexorder/internal/repositories"
	"plexorder/internal/shared"
	"plexorder/internal/tasks"
)

// Playlists lists audio playlists on the configured server.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.requirePlex(); err != nil {
		return err
	}

	r.logger.Info("listing playlists", "server", r.config.Plex.BaseURL)

	playlists, err := r.plex.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, pl := range playlists {
		r.writePlain("%s  %s (%d tracks)\n", pl.Key, pl.Title, pl.TrackCount)
	}
	return nil
}

// Parse parses an export file and prints the recognized track list.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	result, err := r.loadExport(path)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("Parsed %d tracks (%d rows skipped)", len(result.Tracks), result.SkippedRows))
	for i, track := range result.Tracks {
		if track.Artist != "" {
			r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Title)
		} else {
			r.writePlain("%d. %s\n", i+1, track.Title)
		}
	}
	return nil
}

// buildPlan parses the export, resolves the playlist, and runs the match pipeline.
func (r *Runner) buildPlan(ctx context.Context, filePath, keyOrTitle string) (*tasks.ReorderPlan, *playlist.ParseResult, error) {
	if err := r.requirePlex(); err != nil {
		return nil, nil, err
	}

	result, err := r.loadExport(filePath)
	if err != nil {
		return nil, nil, err
	}

	target, err := r.resolvePlaylist(ctx, keyOrTitle)
	if err != nil {
		return nil, nil, err
	}

	plan, err := r.engine.Preview(ctx, nil, target.Key, result.Tracks)
	return plan, result, err
}

// Preview prints the match report and the planned moves without applying them.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	outputPath := cmd.String("output")

	plan, _, err := r.buildPlan(ctx, cmd.String("file"), cmd.String("playlist"))
	if err != nil {
		return err
	}

	var report []byte
	switch format {
	case "text", "":
		report, err = formatter.ReportToText(plan)
	case "markdown", "md":
		report, err = formatter.ReportToMarkdown(plan)
	case "csv":
		report, err = formatter.ReportToCSV(plan)
	default:
		return fmt.Errorf("%w: unknown format %q (must be text, markdown, or csv)", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, report, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.writePlain("Report written to %s\n", outputPath)
		return nil
	}

	return r.writePlain("%s", string(report))
}

// Reorder applies planned moves to the playlist. Without --confirm it only
// prints the preview, matching the behavior of the HTTP endpoint.
func (r *Runner) Reorder(ctx context.Context, cmd *cli.Command) error {
	confirm := cmd.Bool("confirm")
	filePath := cmd.String("file")

	plan, parsed, err := r.buildPlan(ctx, filePath, cmd.String("playlist"))
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Reorder '%s'", plan.Playlist.Title))
	r.writePlain("Matched: %d/%d\n", plan.Matched, len(plan.Results))
	r.writePlain("Moves planned: %d\n\n", len(plan.Moves))

	if plan.Unmatched() > 0 {
		r.writePlain("Unmatched tracks:\n")
		for _, res := range plan.Results {
			if res.Item == nil {
				r.writePlain("  - %s - %s\n", res.Imported.Artist, res.Imported.Title)
			}
		}
		r.writePlain("\n")
	}

	if !confirm {
		r.writePlain("Dry run. Re-run with --confirm to apply %d moves.\n", len(plan.Moves))
		return nil
	}

	if len(plan.Moves) == 0 {
		r.writePlain("Playlist already matches the export order.\n")
		return nil
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			if update.Phase == tasks.ApplyMoves {
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	applied, execErr := r.engine.Execute(ctx, progressCh, plan.Playlist.Key, plan.Moves)
	close(progressCh)
	<-drained

	r.recordRun(filePath, parsed, plan, applied, execErr)

	var partial *tasks.PartialExecutionError
	if errors.As(execErr, &partial) {
		r.writePlain("\n✗ Applied %d of %d moves before a failure: %v\n", applied, len(plan.Moves), partial.Err)
		r.writePlain("The playlist is partially reordered. Re-run preview to see its current state.\n")
		return execErr
	}
	if execErr != nil {
		return execErr
	}

	r.writePlain("\n✓ Applied %d moves\n", applied)
	return nil
}

// recordRun persists the upload and the run outcome. Failure to record is
// logged, not fatal; the moves are already applied.
func (r *Runner) recordRun(filePath string, parsed *playlist.ParseResult, plan *tasks.ReorderPlan, applied int, execErr error) {
	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("failed to open database for run history", "error", err)
		return
	}
	defer db.Close()

	upload := &models.Upload{
		ID:          shared.GenerateID(),
		Filename:    filePath,
		Tracks:      parsed.Tracks,
		SkippedRows: parsed.SkippedRows,
	}
	if err := repositories.NewUploadRepository(db).Create(upload); err != nil {
		r.logger.Warn("failed to record upload", "error", err)
		return
	}

	status := models.RunStatusCompleted
	if execErr != nil {
		status = models.RunStatusPartial
		if applied == 0 {
			status = models.RunStatusFailed
		}
	}

	run := &models.ReorderRun{
		ID:            shared.GenerateID(),
		UploadID:      upload.ID,
		PlaylistKey:   plan.Playlist.Key,
		PlaylistTitle: plan.Playlist.Title,
		Matched:       plan.Matched,
		Unmatched:     plan.Unmatched(),
		MovesPlanned:  len(plan.Moves),
		MovesApplied:  applied,
		Status:        status,
	}
	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record reorder run", "error", err)
	}
}

// History lists recent reorder runs from the database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(limit))
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(runs, true)
	}

	r.writePlainHeader(fmt.Sprintf("Reorder runs (%d)", len(runs)))
	for _, run := range runs {
		r.writePlain("%s  %-10s %s: %d/%d moves, %d matched, %d unmatched\n",
			run.CreatedAt.Format("2006-01-02 15:04"), run.Status, run.PlaylistTitle,
			run.MovesApplied, run.MovesPlanned, run.Matched, run.Unmatched)
	}
	return nil
}
