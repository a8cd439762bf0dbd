package jwks

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/eventify/go-session"
	"github.com/golang-jwt/jwt/v5"
)

// Config controls key retrieval and refresh behavior.
type Config struct {
	// Endpoint is the JWKS URL, e.g. https://auth.eventify.dev/.well-known/jwks.json
	Endpoint string
	// RefreshInterval between background key refreshes. Defaults to 1h.
	RefreshInterval time.Duration
	// RefreshTimeout bounds each refresh request. Defaults to 10s.
	RefreshTimeout time.Duration
	Logger         session.Logger
}

// TokenValidator verifies token signatures against a remote key set.
type TokenValidator struct {
	config Config
	keys   *keyfunc.JWKS
}

// NewTokenValidator fetches the key set and starts background refreshes.
// Callers must Close the validator to stop them.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("jwks: endpoint is required")
	}

	logger := cfg.Logger
	refreshInterval := cfg.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = time.Hour
	}

	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout == 0 {
		refreshTimeout = time.Second * 10
	}

	keys, err := keyfunc.Get(cfg.Endpoint, keyfunc.Options{
		RefreshInterval:   refreshInterval,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    refreshTimeout,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			if logger != nil {
				logger.Error("background key set refresh failed", "error", err)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks: failed to fetch key set: %w", err)
	}

	return &TokenValidator{config: cfg, keys: keys}, nil
}

// Validate implements session.TokenValidator.
func (v *TokenValidator) Validate(tokenString string) (*session.MemberClaims, error) {
	claims := &session.MemberClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, v.keys.Keyfunc)
	if err != nil {
		return nil, normalizeValidationError(err)
	}

	if !token.Valid {
		return nil, session.ErrTokenMalformed
	}

	if vErr := claims.Validate(); vErr != nil {
		return nil, vErr
	}

	return claims, nil
}

// Close stops the background key refresh goroutine.
func (v *TokenValidator) Close() {
	if v.keys != nil {
		v.keys.EndBackground()
	}
}

func normalizeValidationError(err error) error {
	if err == nil {
		return nil
	}

	clone := session.ErrTokenMalformed.Clone()
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		clone = session.ErrTokenExpired.Clone()
	}

	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"provider": "jwks",
		"cause":    err.Error(),
	})
}
