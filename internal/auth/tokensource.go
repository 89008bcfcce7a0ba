package auth

import (
	"context"
	"fmt"

	"github.com/desertthunder/healthart/internal/shared"
	"golang.org/x/oauth2"
)

// sessionTokenSource refreshes through the provider and writes new tokens back into the session.
type sessionTokenSource struct {
	base    oauth2.TokenSource
	session *Session
	current *TokenRecord
	onSwap  func(*TokenRecord)
}

// Token returns a valid token, refreshing it if the stored one has expired.
func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrRefreshFailed, describeRetrieveError(err))
	}

	if tok.AccessToken != ts.current.AccessToken {
		next := newTokenRecord(tok)
		if next.RefreshToken == "" {
			next.RefreshToken = ts.current.RefreshToken
		}
		if ts.session.swapToken(ts.current, next) && ts.onSwap != nil {
			ts.onSwap(next)
		}
		ts.current = next
	}

	return tok, nil
}

// TokenSource returns an [oauth2.TokenSource] over the session token.
//
// Refreshed tokens replace the session token unless the session was logged out meanwhile.
func (m *Manager) TokenSource(ctx context.Context, s *Session) (oauth2.TokenSource, error) {
	current, ok := m.CurrentToken(s)
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}

	ts := &sessionTokenSource{
		base:    m.config.TokenSource(m.clientContext(ctx), current.Token()),
		session: s,
		current: current,
		onSwap: func(t *TokenRecord) {
			m.logger.Info("token refreshed", "session", s.ID(), "expiry", t.Expiry)
		},
	}
	return oauth2.ReuseTokenSource(current.Token(), ts), nil
}

// FreshToken returns the session token, refreshing it first when expired.
func (m *Manager) FreshToken(ctx context.Context, s *Session) (*TokenRecord, error) {
	current, ok := m.CurrentToken(s)
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	if !current.Expired(m.now()) {
		return current, nil
	}
	if !current.Refreshable() {
		return nil, fmt.Errorf("%w: %w", shared.ErrTokenExpired, shared.ErrNoRefreshToken)
	}

	ts, err := m.TokenSource(ctx, s)
	if err != nil {
		return nil, err
	}
	if _, err := ts.Token(); err != nil {
		return nil, err
	}

	refreshed, ok := m.CurrentToken(s)
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	return refreshed, nil
}
