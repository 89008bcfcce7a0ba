package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/healthart/internal/art"
	"github.com/desertthunder/healthart/internal/server"
	"github.com/desertthunder/healthart/internal/ui"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the web app until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	manager, err := r.newManager()
	if err != nil {
		return err
	}

	var recorder art.Recorder
	if !cmd.Bool("no-gallery") {
		db, repo, err := r.openGallery()
		if err != nil {
			return err
		}
		defer db.Close()
		recorder = repo
	}

	bridge, err := r.newBridge(recorder)
	if err != nil {
		return err
	}

	cfg := r.config.Server
	sessions := server.NewSessionStore(cfg.SessionTTL(), cfg.SecureCookies)
	sessions.SetMaxSessions(cfg.MaxSessions)

	app, err := server.NewApp(server.AppOpts{
		Manager:  manager,
		Bridge:   bridge,
		Sessions: sessions,
		Limiter:  server.NewArtLimiter(cfg.ArtRatePerMinute, cfg.ArtBurst),
		Logger:   r.logger,
	})
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = cfg.Addr()
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting server", "addr", addr, "redirect_uri", manager.RedirectURI())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	r.writePlain("%s Listening on http://%s\n", ui.Styles.OK("→"), addr)

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}
	return nil
}
