package client

import (
	"fmt"
	"sync"
)

// Session owns the access/refresh token pair for one authenticated user.
// It is an explicit object rather than package-level state: the HTTP client
// reads the current access token from it, the refresh interceptor rotates
// both tokens through it, and Logout tears down memory and storage together.
type Session struct {
	mu       sync.RWMutex
	access   string
	refresh  string
	storage  TokenStorage
	onLogout func()
}

// NewSession creates a session backed by the given token storage
func NewSession(storage TokenStorage) *Session {
	return &Session{storage: storage}
}

// Hydrate restores the token pair from persisted storage. Call once at
// startup; an empty storage leaves the session logged out.
func (s *Session) Hydrate() error {
	access, refresh, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("failed to hydrate session: %w", err)
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()
	return nil
}

// SetTokens replaces the token pair in memory and persists it
func (s *Session) SetTokens(access, refresh string) error {
	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()

	if err := s.storage.Save(access, refresh); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	return nil
}

// AccessToken returns the current access token, or "" when logged out
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "" when logged out
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Authenticated reports whether the session currently holds an access token
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// OnLogout registers a callback fired whenever the session is logged out,
// either explicitly or because a token refresh failed. UI code uses it to
// clear the authenticated-user state and return to the login view.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	s.onLogout = fn
	s.mu.Unlock()
}

// Logout clears the token pair from memory and storage and fires the
// registered logout callback
func (s *Session) Logout() {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	fn := s.onLogout
	s.mu.Unlock()

	// Storage errors are deliberately ignored here: logout must always
	// succeed from the caller's point of view.
	_ = s.storage.Clear()

	if fn != nil {
		fn()
	}
}
