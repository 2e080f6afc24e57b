package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"plexorder/internal/repositories"
	"plexorder/internal/server"
	"plexorder/internal/shared"
)

// Serve runs the HTTP API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.plex == nil {
		// The API still serves /health and the auth endpoints; playlist
		// routes will fail until a token arrives via X-Plex-Token.
		r.logger.Warn("plex service not configured, playlist routes require X-Plex-Token")
	}

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	api := server.NewAPI(
		shared.WithLogger(r.logger, "component", "http"),
		r.config,
		r.plex,
		repositories.NewUploadRepository(db),
		repositories.NewRunRepository(db),
		server.NewPinSessions(r.config.Plex.Product, r.httpClient),
	)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(api),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
