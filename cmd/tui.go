package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"plexorder/internal/shared"
	"plexorder/internal/ui"
)

// TUI launches the interactive terminal UI for playlist reordering.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlex(); err != nil {
		return err
	}

	result, err := r.loadExport(cmd.String("file"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/plexorder-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, log.DebugLevel)
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.plex, r.engine, result.Tracks)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
