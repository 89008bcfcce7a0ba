package server

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/healthart/internal/auth"
	"github.com/desertthunder/healthart/internal/web"
)

// OAuthResult contains the result of a CLI authorization flow.
type OAuthResult struct {
	Token *auth.TokenRecord
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler completes the authorization-code flow for a single CLI session.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	manager    *auth.Manager
	session    *auth.Session
	pages      *web.Pages
	path       string
	resultChan chan OAuthResult
	once       sync.Once
	mu         sync.Mutex
	handled    bool
}

// NewOAuthHandler creates a handler for callbacks belonging to session.
//
// The session must already hold the state issued by [auth.Manager.BeginLogin].
// The handler serves the path of the manager's redirect URI, or /callback when it has none.
func NewOAuthHandler(manager *auth.Manager, session *auth.Session, pages *web.Pages) *OAuthHandler {
	return &OAuthHandler{
		manager:    manager,
		session:    session,
		pages:      pages,
		path:       callbackPath(manager),
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET " + h.path}
}

// ServeHTTP validates the state, exchanges the code and sends the result through the result channel.
//
// Only the first callback is processed.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	q := r.URL.Query()
	token, err := h.manager.HandleCallback(r.Context(), h.session, q.Get("code"), q.Get("state"))
	if err != nil {
		h.Send(OAuthResult{err: err})
		status, message := classify(err)
		if status == http.StatusFound {
			status = http.StatusUnauthorized
		}
		http.Error(w, message, status)
		return
	}

	h.Send(OAuthResult{Token: token})

	if h.pages == nil {
		w.Write([]byte("Authorization successful. You can close this window.\n"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	h.pages.Render(w, "callback.html", web.Page{Title: "Authorized", Authenticated: true})
}

// callbackPath is the path component of the manager's redirect URI, defaulting to /callback.
func callbackPath(m *auth.Manager) string {
	if m == nil {
		return "/callback"
	}
	u, err := url.Parse(m.RedirectURI())
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/callback"
	}
	return u.Path
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
