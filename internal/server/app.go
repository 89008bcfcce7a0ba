package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/healthart/internal/art"
	"github.com/desertthunder/healthart/internal/auth"
	"github.com/desertthunder/healthart/internal/formatter"
	"github.com/desertthunder/healthart/internal/shared"
	"github.com/desertthunder/healthart/internal/web"
	"golang.org/x/time/rate"
)

// App serves the browser flow: login, callback, art generation and logout.
type App struct {
	manager  *auth.Manager
	bridge   *art.Bridge
	sessions *SessionStore
	pages    *web.Pages
	limiter  *rate.Limiter
	logger   *log.Logger
}

// AppOpts configures an [App].
type AppOpts struct {
	Manager  *auth.Manager
	Bridge   *art.Bridge
	Sessions *SessionStore
	Pages    *web.Pages
	Limiter  *rate.Limiter // optional; nil disables rate limiting on /art routes
	Logger   *log.Logger
}

// NewApp creates an [App].
func NewApp(opts AppOpts) (*App, error) {
	if opts.Manager == nil || opts.Bridge == nil {
		return nil, errors.New("manager and bridge are required")
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessionStore(0, false)
	}
	if opts.Pages == nil {
		pages, err := web.NewPages()
		if err != nil {
			return nil, err
		}
		opts.Pages = pages
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &App{
		manager:  opts.Manager,
		bridge:   opts.Bridge,
		sessions: opts.Sessions,
		pages:    opts.Pages,
		limiter:  opts.Limiter,
		logger:   shared.WithLogger(opts.Logger, "component", "http"),
	}, nil
}

// Routes registers every route of the app on router.
func (a *App) Routes(router Router) {
	limit := RateLimit(a.limiter)

	router.Handle(http.MethodGet, "/", http.HandlerFunc(a.index))
	router.Handle(http.MethodGet, "/login", http.HandlerFunc(a.login))
	router.Handle(http.MethodGet, callbackPath(a.manager), http.HandlerFunc(a.callback))
	router.Handle(http.MethodGet, "/art", http.HandlerFunc(a.art), limit)
	router.Handle(http.MethodGet, "/art.png", http.HandlerFunc(a.artImage))
	router.Handle(http.MethodGet, "/logout", http.HandlerFunc(a.logout))
	router.Handle(http.MethodPost, "/logout", http.HandlerFunc(a.logout))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(a.health))
}

// Handler builds a router with the standard middleware stack and all app routes.
func (a *App) Handler() http.Handler {
	router := NewBasicRouter()
	router.Use(Recover(a.logger), Logging(a.logger))
	a.Routes(router)
	return router
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if e, ok := a.sessions.Lookup(r); ok {
		authenticated = e.Auth.Authenticated()
	}
	a.render(w, http.StatusOK, "index.html", web.Page{Title: "Home", Authenticated: authenticated, Body: authenticated})
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	e := a.sessions.Get(w, r)

	authURL, err := a.manager.BeginLogin(e.Auth)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (a *App) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		a.logger.Warn("provider returned an error", "error", providerErr, "description", q.Get("error_description"))
	}

	e := a.sessions.Get(w, r)
	if _, err := a.manager.HandleCallback(r.Context(), e.Auth, q.Get("code"), q.Get("state")); err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/art", http.StatusFound)
}

func (a *App) art(w http.ResponseWriter, r *http.Request) {
	e, ok := a.sessions.Lookup(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	token, err := a.manager.FreshToken(r.Context(), e.Auth)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	artwork, err := a.bridge.Render(r.Context(), token)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			a.manager.Logout(r.Context(), e.Auth)
			e.SetArtwork(nil)
		}
		a.fail(w, r, err)
		return
	}
	e.SetArtwork(artwork)

	snap := artwork.Snapshot()
	view := web.ArtView{
		ID:            artwork.ID(),
		RecoveryScore: snap.RecoveryScore,
		Metrics:       art.PresentMetrics(snap),
		Prompt:        artwork.Prompt(),
		ContentType:   artwork.ContentType(),
		Image:         artwork.Image(),
	}
	a.render(w, http.StatusOK, "art.html", web.Page{Title: "Art", Authenticated: true, Body: view})
}

func (a *App) artImage(w http.ResponseWriter, r *http.Request) {
	e, ok := a.sessions.Lookup(r)
	if !ok || e.Artwork() == nil {
		http.NotFound(w, r)
		return
	}

	artwork := e.Artwork()
	w.Header().Set("Content-Type", artwork.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="healthart`+formatter.Extension(artwork.ContentType())+`"`)
	w.Write(artwork.Image())
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	if e, ok := a.sessions.Lookup(r); ok {
		a.manager.Logout(r.Context(), e.Auth)
	}
	a.sessions.Drop(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	body, err := shared.MarshalJSON(map[string]any{"status": "ok", "sessions": a.sessions.Len()}, false)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// fail maps err to a status and a user-safe message. Details only go to the log.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)

	if status == http.StatusFound {
		a.logger.Info("redirecting to login", "path", r.URL.Path, "reason", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		a.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	authenticated := false
	if e, ok := a.sessions.Lookup(r); ok {
		authenticated = e.Auth.Authenticated()
	}
	a.render(w, status, "error.html", web.Page{
		Title:         http.StatusText(status),
		Authenticated: authenticated,
		Body:          web.ErrorView{Status: status, Message: message},
	})
}

// classify returns the response status and message for err.
//
// [http.StatusFound] means the user should be sent through login again.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrMissingState):
		return http.StatusBadRequest, "The login response was missing its state parameter. Please log in again."
	case errors.Is(err, shared.ErrInvalidState):
		return http.StatusBadRequest, "This login link is invalid or was already used. Please log in again."
	case errors.Is(err, shared.ErrTokenExchangeFailed):
		return http.StatusBadGateway, "WHOOP did not accept the login. Please try again."
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrRefreshFailed),
		errors.Is(err, shared.ErrUnauthorized):
		return http.StatusFound, ""
	case errors.Is(err, shared.ErrNoData):
		return http.StatusNotFound, "No scored recovery is available yet. Try again after your next sleep is scored."
	case errors.Is(err, shared.ErrTransport):
		return http.StatusBadGateway, "Could not reach WHOOP. Please try again shortly."
	case errors.Is(err, shared.ErrArtGenerationFailed):
		return http.StatusBadGateway, "The image could not be generated. Please try again."
	default:
		return http.StatusInternalServerError, "Something went wrong on our side."
	}
}

// render writes the page only once it has rendered completely.
func (a *App) render(w http.ResponseWriter, status int, name string, page web.Page) {
	var buf bytes.Buffer
	if err := a.pages.Render(&buf, name, page); err != nil {
		a.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
