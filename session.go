package qbt

import (
	"net/http"
	"strings"
	"sync"
)

// SessionState is the client's view of its WebUI session.
type SessionState int

const (
	// SessionUnauthenticated means no login happened yet, or the session was logged out.
	SessionUnauthenticated SessionState = iota
	// SessionAuthenticated means a session cookie is held.
	SessionAuthenticated
	// SessionInvalidated means the server rejected the held session; login again.
	SessionInvalidated
)

func (s SessionState) String() string {
	switch s {
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionAuthenticated:
		return "authenticated"
	case SessionInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Credentials are consumed by Login and never kept by the client.
type Credentials struct {
	Username string
	Password string
}

const sessionCookieName = "SID"

// isSessionCookie accepts SID and the QBT_SID_<port> cookies of newer builds.
func isSessionCookie(name string) bool {
	return name == sessionCookieName || strings.HasPrefix(name, "QBT_SID")
}

func findSessionCookie(cookies []*http.Cookie) *http.Cookie {
	for _, c := range cookies {
		if isSessionCookie(c.Name) && c.Value != "" {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	return nil
}

// session is the only mutable state of a Client.
type session struct {
	mu     sync.RWMutex
	state  SessionState
	cookie *http.Cookie
}

// snapshot returns the current state and cookie under the read lock.
func (s *session) snapshot() (SessionState, *http.Cookie) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.cookie
}

// setLocked installs a new cookie. Caller holds mu.
func (s *session) setLocked(cookie *http.Cookie) {
	s.cookie = cookie
	s.state = SessionAuthenticated
}

// clearLocked forgets the cookie. Caller holds mu.
func (s *session) clearLocked() {
	s.cookie = nil
	s.state = SessionUnauthenticated
}

// invalidate marks the session stale if used is still the current cookie.
// It reports whether a transition happened.
func (s *session) invalidate(used *http.Cookie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionAuthenticated || s.cookie != used {
		return false
	}
	s.cookie = nil
	s.state = SessionInvalidated
	return true
}
