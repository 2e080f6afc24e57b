package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "plexorder.db" {
			t.Errorf("expected database path plexorder.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Server.MaxUploadMB != 8 {
			t.Errorf("expected max upload 8 MB, got %d", config.Server.MaxUploadMB)
		}

		if config.Plex.BaseURL != "http://localhost:32400" {
			t.Errorf("expected plex base URL http://localhost:32400, got %s", config.Plex.BaseURL)
		}

		if config.Plex.Token != "" {
			t.Errorf("expected empty default token, got %s", config.Plex.Token)
		}

		if config.Matcher.FuzzyThreshold != 0.80 {
			t.Errorf("expected fuzzy threshold 0.80, got %f", config.Matcher.FuzzyThreshold)
		}

		if config.Matcher.TitleOnlyThreshold != 0.85 {
			t.Errorf("expected title-only threshold 0.85, got %f", config.Matcher.TitleOnlyThreshold)
		}

		if config.Matcher.MoveRateLimit != 5.0 {
			t.Errorf("expected move rate limit 5.0, got %f", config.Matcher.MoveRateLimit)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		} else if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[plex]
base_url = "http://10.0.0.5:32400"
token = "test-token"
product = "plexorder"
client_id = "abc-123"

[server]
host = "0.0.0.0"
port = 9090
max_upload_mb = 16

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[matcher]
fuzzy_threshold = 0.75
title_only_threshold = 0.90
move_rate_limit = 2.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Plex.BaseURL != "http://10.0.0.5:32400" {
			t.Errorf("expected plex base URL http://10.0.0.5:32400, got %s", config.Plex.BaseURL)
		}

		if config.Plex.Token != "test-token" {
			t.Errorf("expected token test-token, got %s", config.Plex.Token)
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}

		if config.Database.MaxOpenConns != 20 {
			t.Errorf("expected 20 max open conns, got %d", config.Database.MaxOpenConns)
		}

		if config.Matcher.FuzzyThreshold != 0.75 {
			t.Errorf("expected fuzzy threshold 0.75, got %f", config.Matcher.FuzzyThreshold)
		}
	})

	t.Run("LoadConfigMissingFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if err == nil {
			t.Fatal("loading a missing config file should fail")
		}
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("SaveConfigRoundTrip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Plex.Token = "saved-token"
		config.Matcher.MoveRateLimit = 1.0

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}

		if loaded.Plex.Token != "saved-token" {
			t.Errorf("expected token saved-token, got %s", loaded.Plex.Token)
		}

		if loaded.Matcher.MoveRateLimit != 1.0 {
			t.Errorf("expected move rate limit 1.0, got %f", loaded.Matcher.MoveRateLimit)
		}

		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatalf("failed to stat saved config: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}
	})
}
