package contactsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// refreshSkew refreshes the access token this long before it expires.
const refreshSkew = 30 * time.Second

// ErrNoRefreshToken is returned when the access token expired and the
// session has nothing to renew it with.
var ErrNoRefreshToken = errors.New("contactsdk: access token expired and no refresh token available")

// Session is an authenticated session with automatic token rotation.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	s := &Session{client: client}
	s.apply(tok)
	return s
}

// NewSessionFromTokens builds a session from tokens obtained elsewhere.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

func (s *Session) apply(tok *TokenResponse) {
	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = s.client.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshSkew)
}

func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.client.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// another goroutine may have refreshed while we waited
	if s.client.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	tok, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.apply(tok)
	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiry.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Logout revokes the session's refresh token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.refreshToken
	s.refreshToken = ""
	s.mu.Unlock()

	if refresh == "" {
		return ErrNoRefreshToken
	}
	return s.client.Logout(ctx, refresh)
}
