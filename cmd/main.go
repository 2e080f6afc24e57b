package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"plexorder/internal/services"
	"plexorder/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var plexService *services.PlexService
	if config.Plex.BaseURL != "" {
		if svc, err := services.NewPlexService(config.Plex.BaseURL, config.Plex.Token, nil); err == nil {
			plexService = svc
		} else {
			logger.Warn("invalid plex configuration", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Plex:   plexService,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "plexorder",
		Usage:    "Reorder Plex playlists to match an Apple Music export",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
