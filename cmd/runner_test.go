package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plexorder/internal/services"
	"plexorder/internal/shared"
)

// failWriter fails every write, for exercising output error paths.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("write failed") }

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			plex, err := services.NewPlexService("http://localhost:32400", "tok", httpClient)
			if err != nil {
				t.Fatalf("failed to create plex service: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Plex:       plex,
				HTTPClient: httpClient,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.plex != plex {
				t.Error("expected plex to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: failWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: failWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("requirePlex", func(t *testing.T) {
		t.Run("nil service", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			err := runner.requirePlex()
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("missing token", func(t *testing.T) {
			plex, err := services.NewPlexService("http://localhost:32400", "", nil)
			if err != nil {
				t.Fatalf("failed to create plex service: %v", err)
			}

			runner := NewRunner(RunnerOpts{Plex: plex})

			err = runner.requirePlex()
			if !errors.Is(err, shared.ErrMissingToken) {
				t.Errorf("expected ErrMissingToken, got %v", err)
			}
		})

		t.Run("configured", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Plex.Token = "tok"
			plex, err := services.NewPlexService("http://localhost:32400", "tok", nil)
			if err != nil {
				t.Fatalf("failed to create plex service: %v", err)
			}

			runner := NewRunner(RunnerOpts{Config: config, Plex: plex})

			if err := runner.requirePlex(); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	})

	t.Run("loadExport", func(t *testing.T) {
		t.Run("parses a tab separated export", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "export.txt")
			content := "Name\tArtist\nHey Jude\tThe Beatles\nHalo\tBeyoncé\n"
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write export: %v", err)
			}

			runner := NewRunner(RunnerOpts{})

			result, err := runner.loadExport(path)
			if err != nil {
				t.Fatalf("loadExport failed: %v", err)
			}
			if len(result.Tracks) != 2 {
				t.Errorf("expected 2 tracks, got %d", len(result.Tracks))
			}
		})

		t.Run("empty path", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, err := runner.loadExport(""); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("empty file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "empty.txt")
			if err := os.WriteFile(path, nil, 0644); err != nil {
				t.Fatalf("failed to write export: %v", err)
			}

			runner := NewRunner(RunnerOpts{})

			if _, err := runner.loadExport(path); !errors.Is(err, shared.ErrEmptyPlaylist) {
				t.Errorf("expected ErrEmptyPlaylist, got %v", err)
			}
		})
	})

	t.Run("resolvePlaylist", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"MediaContainer":{"Metadata":[
				{"ratingKey":"100","title":"Road Trip","playlistType":"audio","smart":false,"leafCount":2},
				{"ratingKey":"200","title":"Gym","playlistType":"audio","smart":false,"leafCount":5}
			]}}`)
		}))
		defer srv.Close()

		plex, err := services.NewPlexService(srv.URL, "tok", srv.Client())
		if err != nil {
			t.Fatalf("failed to create plex service: %v", err)
		}
		runner := NewRunner(RunnerOpts{Plex: plex})

		t.Run("by key", func(t *testing.T) {
			target, err := runner.resolvePlaylist(context.Background(), "200")
			if err != nil {
				t.Fatalf("resolvePlaylist failed: %v", err)
			}
			if target.Title != "Gym" {
				t.Errorf("expected Gym, got %s", target.Title)
			}
		})

		t.Run("by title case insensitive", func(t *testing.T) {
			target, err := runner.resolvePlaylist(context.Background(), "road trip")
			if err != nil {
				t.Fatalf("resolvePlaylist failed: %v", err)
			}
			if target.Key != "100" {
				t.Errorf("expected key 100, got %s", target.Key)
			}
		})

		t.Run("not found", func(t *testing.T) {
			_, err := runner.resolvePlaylist(context.Background(), "Nope")
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("empty argument", func(t *testing.T) {
			_, err := runner.resolvePlaylist(context.Background(), "")
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})
}
