package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/healthart/internal/art"
	"github.com/desertthunder/healthart/internal/auth"
	"github.com/desertthunder/healthart/internal/formatter"
	"github.com/desertthunder/healthart/internal/server"
	"github.com/desertthunder/healthart/internal/shared"
	"github.com/desertthunder/healthart/internal/ui"
	"github.com/desertthunder/healthart/internal/web"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 2 * time.Minute

// Login authorizes in the browser through a temporary callback server, then renders art into a file.
//
// The token only lives for the duration of the command and is revoked (when configured) before exit.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	manager, err := r.newManager()
	if err != nil {
		return err
	}

	session := auth.NewSession(shared.GenerateID())
	token, err := r.doOAuth(ctx, manager, session, cmd.Duration("timeout"), !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}
	defer manager.Logout(context.Background(), session)

	var recorder art.Recorder
	if !cmd.Bool("no-gallery") {
		db, repo, err := r.openGallery()
		if err != nil {
			r.logger.Warn("gallery unavailable, artwork will not be recorded", "error", err)
		} else {
			defer db.Close()
			recorder = repo
		}
	}

	bridge, err := r.newBridge(recorder)
	if err != nil {
		return err
	}

	r.writePlain("→ Fetching recovery and generating art...\n")
	artwork, err := bridge.Render(ctx, token)
	if err != nil {
		return err
	}

	path, err := formatter.WriteImage(artwork, cmd.String("output"))
	if err != nil {
		return err
	}

	snap := artwork.Snapshot()
	score := ui.Styles.Band(snap.RecoveryScore).Render(formatter.FormatMetric(&snap.RecoveryScore) + "%")
	r.writePlainln("%s Recovery %s", ui.Styles.OK("✓"), score)
	r.writePlain("%s Image saved to %s\n", ui.Styles.OK("✓"), path)
	if artwork.ID() != "" {
		r.writePlain("%s\n", ui.Styles.Help("Gallery id: "+artwork.ID()))
	}
	return nil
}

// doOAuth serves the redirect URI locally until one callback completes the flow.
func (r *Runner) doOAuth(ctx context.Context, manager *auth.Manager, session *auth.Session, timeout time.Duration, browser bool) (*auth.TokenRecord, error) {
	redirect, err := url.Parse(manager.RedirectURI())
	if err != nil {
		return nil, fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	authURL, err := manager.BeginLogin(session)
	if err != nil {
		return nil, err
	}

	pages, err := web.NewPages()
	if err != nil {
		return nil, err
	}

	oauthHandler := server.NewOAuthHandler(manager, session, pages)
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger))
	router.Handler(oauthHandler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting OAuth callback server", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	if browser {
		r.writePlain("→ Opening browser for WHOOP authorization...\n")
		if err := r.openBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	} else {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	}

	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrTokenExchangeFailed)
	}

	r.writePlain("%s Authorized\n", ui.Styles.OK("✓"))
	return result.Token, nil
}
