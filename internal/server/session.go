package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/healthart/internal/auth"
	"github.com/desertthunder/healthart/internal/models"
	"github.com/desertthunder/healthart/internal/shared"
)

// SessionCookie is the name of the cookie carrying the session ID.
const SessionCookie = "healthart_session"

// DefaultMaxSessions caps the store when no limit is configured.
const DefaultMaxSessions = 10000

// Entry is one browser session: its auth state plus the last artwork it rendered.
type Entry struct {
	Auth *auth.Session

	mu       sync.Mutex
	lastSeen time.Time
	artwork  *models.Artwork
}

// Artwork returns the most recently rendered artwork, if any.
func (e *Entry) Artwork() *models.Artwork {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.artwork
}

// SetArtwork replaces the most recently rendered artwork.
func (e *Entry) SetArtwork(a *models.Artwork) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.artwork = a
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *Entry) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastSeen)
}

// SessionStore keeps sessions in memory, keyed by the value of [SessionCookie].
//
// Sessions idle for longer than the TTL are discarded. When the store is full,
// starting a session evicts the least recently used one.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Entry
	ttl      time.Duration
	secure   bool
	max      int
	now      func() time.Time
}

// NewSessionStore creates a store. secure marks the cookie Secure for HTTPS deployments.
func NewSessionStore(ttl time.Duration, secure bool) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*Entry),
		ttl:      ttl,
		secure:   secure,
		max:      DefaultMaxSessions,
		now:      time.Now,
	}
}

// SetMaxSessions changes the session cap; non-positive values restore [DefaultMaxSessions].
func (s *SessionStore) SetMaxSessions(n int) {
	if n <= 0 {
		n = DefaultMaxSessions
	}
	s.mu.Lock()
	s.max = n
	s.mu.Unlock()
}

// Lookup returns the live session named by the request cookie without creating one.
func (s *SessionStore) Lookup(r *http.Request) (*Entry, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[c.Value]
	if !ok {
		return nil, false
	}
	if e.idleSince(now) > s.ttl {
		delete(s.sessions, c.Value)
		return nil, false
	}
	e.touch(now)
	return e, true
}

// Get returns the request's session, starting a new one and setting the cookie when needed.
func (s *SessionStore) Get(w http.ResponseWriter, r *http.Request) *Entry {
	if e, ok := s.Lookup(r); ok {
		return e
	}

	now := s.now()
	id := shared.GenerateID()
	e := &Entry{Auth: auth.NewSession(id), lastSeen: now}

	s.mu.Lock()
	s.pruneLocked(now)
	for len(s.sessions) >= s.max {
		s.evictOldestLocked(now)
	}
	s.sessions[id] = e
	s.mu.Unlock()

	http.SetCookie(w, s.cookie(id, int(s.ttl.Seconds())))
	return e
}

// Drop forgets the request's session and expires its cookie.
func (s *SessionStore) Drop(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, s.cookie("", -1))
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) pruneLocked(now time.Time) {
	for id, e := range s.sessions {
		if e.idleSince(now) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *SessionStore) evictOldestLocked(now time.Time) {
	oldest, idle := "", time.Duration(-1)
	for id, e := range s.sessions {
		if d := e.idleSince(now); d > idle {
			oldest, idle = id, d
		}
	}
	delete(s.sessions, oldest)
}

func (s *SessionStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
