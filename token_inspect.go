package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInspector decodes bearer tokens without signature verification and
// answers expiry questions. Expiry checks fail closed: a token that cannot
// be decoded, or that carries no expiry claim, counts as expired.
type TokenInspector struct {
	logger Logger
	now    func() time.Time
}

// TokenInspectorOption customizes a TokenInspector.
type TokenInspectorOption func(*TokenInspector)

// WithInspectorLogger overrides the default logger.
func WithInspectorLogger(logger Logger) TokenInspectorOption {
	return func(i *TokenInspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithInspectorClock injects a custom clock (useful for tests).
func WithInspectorClock(now func() time.Time) TokenInspectorOption {
	return func(i *TokenInspector) {
		if now != nil {
			i.now = now
		}
	}
}

// NewTokenInspector returns a new TokenInspector.
func NewTokenInspector(opts ...TokenInspectorOption) *TokenInspector {
	i := &TokenInspector{
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// DecodeClaims parses the token's payload segment into MemberClaims. No
// signature verification happens here; the backend signed the token and the
// client only needs its contents.
func (i *TokenInspector) DecodeClaims(tokenString string) (*MemberClaims, error) {
	claims := &MemberClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		richErr := ErrUnableToDecodeClaims.Clone()
		richErr.Source = err
		return nil, richErr.WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}

	return claims, nil
}

// IsExpired reports whether the token is past its expiry instant, comparing
// epoch seconds. Decode failures and missing expiry claims count as expired.
func (i *TokenInspector) IsExpired(tokenString string) bool {
	claims, err := i.DecodeClaims(tokenString)
	if err != nil {
		i.logger.Debug("treating undecodable token as expired", "error", err)
		return true
	}

	if claims.RegisteredClaims.ExpiresAt == nil {
		i.logger.Warn("token carries no expiry claim, treating as expired")
		return true
	}

	return claims.RegisteredClaims.ExpiresAt.Unix() < i.now().Unix()
}

// Validate satisfies the TokenValidator interface: structural decode plus
// expiry check, no signature verification.
func (i *TokenInspector) Validate(tokenString string) (*MemberClaims, error) {
	claims, err := i.DecodeClaims(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.RegisteredClaims.ExpiresAt == nil || claims.RegisteredClaims.ExpiresAt.Unix() < i.now().Unix() {
		return nil, ErrTokenExpired
	}

	return claims, nil
}
