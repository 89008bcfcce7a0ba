package auth

import (
	"sync"
	"time"
)

// Session is the per-user authentication state: outstanding login states and the current token.
type Session struct {
	mu     sync.Mutex
	id     string
	states map[string]time.Time
	token  *TokenRecord
}

// NewSession creates an empty session identified by id.
func NewSession(id string) *Session {
	return &Session{id: id, states: make(map[string]time.Time)}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Outstanding returns the number of issued, unconsumed states.
func (s *Session) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Authenticated reports whether the session currently holds a token.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil
}

// addState records state, pruning expired entries and evicting the oldest beyond limit.
func (s *Session) addState(state string, now time.Time, ttl time.Duration, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now, ttl)
	for limit > 0 && len(s.states) >= limit {
		var oldest string
		var oldestAt time.Time
		for k, at := range s.states {
			if oldest == "" || at.Before(oldestAt) {
				oldest, oldestAt = k, at
			}
		}
		delete(s.states, oldest)
	}
	s.states[state] = now
}

// consumeState removes state and reports whether it was outstanding and unexpired.
// A rejected state also clears the token.
func (s *Session) consumeState(state string, now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	issued, ok := s.states[state]
	delete(s.states, state)
	s.pruneLocked(now, ttl)

	if !ok || (ttl > 0 && now.Sub(issued) > ttl) {
		s.token = nil
		return false
	}
	return true
}

func (s *Session) pruneLocked(now time.Time, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	for k, at := range s.states {
		if now.Sub(at) > ttl {
			delete(s.states, k)
		}
	}
}

func (s *Session) currentToken() *TokenRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) setToken(t *TokenRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = t
}

// swapToken replaces the token only if the session still holds old.
func (s *Session) swapToken(old, next *TokenRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != old {
		return false
	}
	s.token = next
	return true
}

// takeToken clears and returns the current token.
func (s *Session) takeToken() *TokenRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.token
	s.token = nil
	return t
}
