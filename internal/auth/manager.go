package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/healthart/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultStateTTL  = 10 * time.Minute
	DefaultMaxStates = 8
	defaultTimeout   = 30 * time.Second
)

// ManagerOpts configures a [Manager].
type ManagerOpts struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	RevokeURL    string // optional; logout skips revocation when empty
	Scopes       []string
	HTTPClient   *http.Client
	Logger       *log.Logger
	StateTTL     time.Duration
	MaxStates    int
	Now          func() time.Time
}

// Manager implements the authorization-code grant for [Session] values.
type Manager struct {
	config     *oauth2.Config
	revokeURL  string
	httpClient *http.Client
	logger     *log.Logger
	stateTTL   time.Duration
	maxStates  int
	now        func() time.Time
}

// NewManager validates opts and builds a Manager.
//
// Client credentials are sent in the token request body (client_secret_post).
func NewManager(opts ManagerOpts) (*Manager, error) {
	switch {
	case opts.ClientID == "":
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	case opts.ClientSecret == "":
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	case opts.RedirectURI == "":
		return nil, fmt.Errorf("%w: redirect_uri is required", shared.ErrInvalidConfig)
	case opts.AuthURL == "" || opts.TokenURL == "":
		return nil, fmt.Errorf("%w: auth and token URLs are required", shared.ErrInvalidConfig)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.StateTTL <= 0 {
		opts.StateTTL = DefaultStateTTL
	}
	if opts.MaxStates <= 0 {
		opts.MaxStates = DefaultMaxStates
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       opts.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthURL,
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		revokeURL:  opts.RevokeURL,
		httpClient: opts.HTTPClient,
		logger:     shared.WithLogger(opts.Logger, "component", "auth"),
		stateTTL:   opts.StateTTL,
		maxStates:  opts.MaxStates,
		now:        opts.Now,
	}, nil
}

// RedirectURI returns the callback URI sent in both the authorization and token requests.
func (m *Manager) RedirectURI() string {
	return m.config.RedirectURL
}

// BeginLogin issues a new state for s and returns the provider authorization URL.
//
// Earlier outstanding states stay valid until used or expired; the session token is untouched.
func (m *Manager) BeginLogin(s *Session) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	s.addState(state, m.now(), m.stateTTL, m.maxStates)
	m.logger.Debug("login started", "session", s.ID(), "outstanding", s.Outstanding())

	return m.config.AuthCodeURL(state), nil
}

// HandleCallback validates state against s and exchanges code for a token.
//
// The state is consumed before the exchange, so a failed exchange cannot be retried with it.
// Nothing is stored unless the exchange succeeds.
func (m *Manager) HandleCallback(ctx context.Context, s *Session, code, state string) (*TokenRecord, error) {
	if state == "" {
		return nil, shared.ErrMissingState
	}

	if !s.consumeState(state, m.now(), m.stateTTL) {
		m.logger.Warn("rejected callback state", "session", s.ID())
		return nil, shared.ErrInvalidState
	}

	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", shared.ErrTokenExchangeFailed)
	}

	token, err := m.config.Exchange(m.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrTokenExchangeFailed, describeRetrieveError(err))
	}

	record := newTokenRecord(token)
	s.setToken(record)
	m.logger.Info("session authenticated", "session", s.ID(), "expiry", record.Expiry)

	return record, nil
}

// CurrentToken returns the session token, if any.
func (m *Manager) CurrentToken(s *Session) (*TokenRecord, bool) {
	t := s.currentToken()
	return t, t != nil
}

// Logout clears the session token and revokes it when a revocation endpoint is configured.
//
// Revocation errors are logged; the local token is cleared regardless.
func (m *Manager) Logout(ctx context.Context, s *Session) {
	token := s.takeToken()
	if token == nil || m.revokeURL == "" {
		return
	}

	if err := m.revoke(ctx, token); err != nil {
		m.logger.Warn("token revocation failed", "session", s.ID(), "error", err)
	}
}

func (m *Manager) revoke(ctx context.Context, token *TokenRecord) error {
	form := url.Values{
		"token":           {token.AccessToken},
		"token_type_hint": {"access_token"},
		"client_id":       {m.config.ClientID},
		"client_secret":   {m.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("revocation endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// clientContext makes the oauth2 package use the manager's bounded HTTP client.
func (m *Manager) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// describeRetrieveError keeps provider error codes but drops response bodies.
func describeRetrieveError(err error) string {
	var rErr *oauth2.RetrieveError
	if !errors.As(err, &rErr) {
		return err.Error()
	}

	status := 0
	if rErr.Response != nil {
		status = rErr.Response.StatusCode
	}
	if rErr.ErrorCode != "" {
		return fmt.Sprintf("status %d: %s", status, rErr.ErrorCode)
	}
	return fmt.Sprintf("status %d", status)
}
