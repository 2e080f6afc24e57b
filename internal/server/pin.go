package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"plexorder/internal/services"
	"plexorder/internal/shared"
)

// SessionTTL is how long an unclaimed PIN session is kept before cleanup.
const SessionTTL = 10 * time.Minute

type pinSession struct {
	login     *services.PinLogin
	createdAt time.Time
}

// PinSessions tracks in-flight plex.tv PIN logins for the web UI, keyed by
// an opaque session id. Expired sessions are swept on every access.
type PinSessions struct {
	mu         sync.Mutex
	sessions   map[string]*pinSession
	ttl        time.Duration
	product    string
	httpClient *http.Client
	now        func() time.Time
}

// NewPinSessions creates a session store. A nil client selects
// [http.DefaultClient].
func NewPinSessions(product string, client *http.Client) *PinSessions {
	if client == nil {
		client = http.DefaultClient
	}
	return &PinSessions{
		sessions:   make(map[string]*pinSession),
		ttl:        SessionTTL,
		product:    product,
		httpClient: client,
		now:        time.Now,
	}
}

// Start creates a new PIN login and returns its session id and the
// app.plex.tv URL the user must visit.
func (s *PinSessions) Start(ctx context.Context, forwardURL string) (sessionID, authURL string, err error) {
	sessionID = shared.GenerateID()

	// The session id doubles as the X-Plex-Client-Identifier, so polling
	// uses the same identity that created the pin.
	login, err := services.NewPinLogin(ctx, s.product, sessionID, s.httpClient)
	if err != nil {
		return "", "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.sessions[sessionID] = &pinSession{login: login, createdAt: s.now()}

	return sessionID, login.AuthURL(forwardURL), nil
}

// Status polls the session's pin once. When the pin is claimed the session
// is removed and the token returned; while pending, loggedIn is false.
func (s *PinSessions) Status(ctx context.Context, sessionID string) (loggedIn bool, token string, err error) {
	s.mu.Lock()
	s.sweep()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()

	if !ok {
		return false, "", shared.ErrSessionNotFound
	}

	token, err = session.login.Check(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrAuthPending) {
			return false, "", nil
		}
		return false, "", err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return true, token, nil
}

// TTLSeconds reports the session lifetime for API responses.
func (s *PinSessions) TTLSeconds() int {
	return int(s.ttl / time.Second)
}

// sweep removes expired sessions. Caller must hold the lock.
func (s *PinSessions) sweep() {
	cutoff := s.now().Add(-s.ttl)
	for id, session := range s.sessions {
		if session.createdAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
