package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Storage keys. The marker keys are advisory: sibling processes poll them
// to notice logins and logouts happening elsewhere (last write wins, no
// stronger guarantee).
const (
	KeyAccessToken  = "accessToken"
	KeyLoginMarker  = "login"
	KeyLogoutMarker = "logout"
)

// TokenStore owns the persisted bearer token. Read performs only a
// structural check (three dot-separated segments); signature verification
// is the backend's job, expiry is the TokenInspector's.
type TokenStore struct {
	backend StorageBackend
	logger  Logger
	now     func() time.Time
}

// TokenStoreOption customizes a TokenStore.
type TokenStoreOption func(*TokenStore)

// WithTokenStoreLogger overrides the default logger.
func WithTokenStoreLogger(logger Logger) TokenStoreOption {
	return func(s *TokenStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTokenStoreClock injects a custom clock (useful for tests).
func WithTokenStoreClock(now func() time.Time) TokenStoreOption {
	return func(s *TokenStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenStore builds a store over the given backend. A nil backend
// degrades to NullBackend so every operation is a safe no-op.
func NewTokenStore(backend StorageBackend, opts ...TokenStoreOption) *TokenStore {
	if backend == nil {
		backend = NullBackend{}
	}

	s := &TokenStore{
		backend: backend,
		logger:  defLogger{},
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Save persists the token and records the login marker. Empty tokens and
// the literal strings "undefined"/"null" are rejected without touching the
// stored value.
func (s *TokenStore) Save(ctx context.Context, token string) error {
	if isJunkToken(token) {
		s.logger.Warn("refusing to save junk token", "token", token)
		return nil
	}

	if err := s.backend.Set(ctx, KeyAccessToken, token); err != nil {
		return ErrStorageUnavailable.Clone().WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}

	s.setMarker(ctx, KeyLoginMarker)
	return nil
}

// Read returns the stored token, or absent when nothing usable is stored.
// A structurally invalid value is cleared before reporting absent, so a
// junk write can never shadow a later valid login.
func (s *TokenStore) Read(ctx context.Context) (string, bool) {
	token, err := s.backend.Get(ctx, KeyAccessToken)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Warn("token read failed", "error", err)
		}
		return "", false
	}

	if isJunkToken(token) {
		return "", false
	}

	if strings.Count(token, ".") != 2 {
		s.logger.Warn("stored token is structurally invalid, clearing", "segments", len(strings.Split(token, ".")))
		if err := s.Clear(ctx); err != nil {
			s.logger.Error("failed to clear invalid token", "error", err)
		}
		return "", false
	}

	return token, true
}

// Clear removes the token and records the logout marker.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, KeyAccessToken); err != nil {
		return ErrStorageUnavailable.Clone().WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}

	s.setMarker(ctx, KeyLogoutMarker)
	return nil
}

// LastLogin reads the advisory login marker.
func (s *TokenStore) LastLogin(ctx context.Context) (time.Time, bool) {
	return s.marker(ctx, KeyLoginMarker)
}

// LastLogout reads the advisory logout marker.
func (s *TokenStore) LastLogout(ctx context.Context) (time.Time, bool) {
	return s.marker(ctx, KeyLogoutMarker)
}

func (s *TokenStore) setMarker(ctx context.Context, key string) {
	if err := s.backend.Set(ctx, key, s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		// markers are best effort
		s.logger.Debug("failed to record session marker", "key", key, "error", err)
	}
}

func (s *TokenStore) marker(ctx context.Context, key string) (time.Time, bool) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func isJunkToken(token string) bool {
	return token == "" || token == "undefined" || token == "null"
}
