package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"plexorder/internal/services"
	"plexorder/internal/shared"
)

const defaultPinTimeout = 10 * time.Minute

// AuthLogin runs the plex.tv PIN flow and saves the resulting token to config.toml.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	noBrowser := cmd.Bool("no-browser")
	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultPinTimeout
	}

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	pin, err := services.NewPinLogin(ctx, config.Plex.Product, config.Plex.ClientID, r.httpClient)
	if err != nil {
		return fmt.Errorf("failed to create pin: %w", err)
	}

	authURL := pin.AuthURL("")
	r.writePlain("PIN code: %s\n", pin.Code)
	r.writePlain("Approve this device at:\n  %s\n\n", authURL)

	if !noBrowser {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	r.logger.Info("waiting for pin approval", "timeout", timeout)
	token, err := pin.Wait(ctx, 2*time.Second, timeout)
	if err != nil {
		return err
	}

	config.Plex.Token = token
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", configPath)
	r.writePlain("You can now use: plexorder playlists\n")

	return nil
}

// AuthStatus checks the configured token by listing playlists.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlex(); err != nil {
		return err
	}

	r.logger.Info("checking auth status", "server", r.config.Plex.BaseURL)

	playlists, err := r.plex.Playlists(ctx)
	if err != nil {
		r.writePlain("✗ Not authenticated: %v\n", err)
		return err
	}

	r.writePlain("✓ Authenticated\n")
	r.writePlain("Server: %s\n", r.config.Plex.BaseURL)
	r.writePlain("Audio playlists: %d\n", len(playlists))
	return nil
}
