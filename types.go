package session

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// StorageBackend is the persistence capability behind TokenStore. Non
// interactive contexts use NullBackend, which misses on every read and
// swallows writes.
type StorageBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AuthTransport exchanges credentials for a bearer token. Implementations
// must be one-shot and uncached: every call is a fresh round trip carrying
// no prior authentication.
type AuthTransport interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Signup(ctx context.Context, input SignupInput) (string, error)
}

// Credentials is the login payload.
type Credentials struct {
	Identifier string
	Secret     string
}

// SignupInput is the registration payload.
type SignupInput struct {
	Identifier  string
	Secret      string
	Email       string
	DisplayName string
	AccountType MemberType
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific verification strategy.
type TokenValidator interface {
	Validate(tokenString string) (*MemberClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (*MemberClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (*MemberClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeClaims
	}
	return f(tokenString)
}

// Redirector abstracts post-logout navigation. Web embeddings redirect to
// the login entry point; a failing redirect falls back to Reload so no stale
// session view survives.
type Redirector interface {
	Redirect(path string) error
	Reload() error
}

// Config holds session SDK options.
type Config interface {
	GetEndpoint() string
	GetLoginPath() string
	GetHTTPTimeout() time.Duration
	GetTokenKey() string
	GetTokenLookup() string
	GetAuthScheme() string
	GetCookieDuration() time.Duration
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type noopRedirector struct{}

func (noopRedirector) Redirect(string) error { return nil }
func (noopRedirector) Reload() error         { return nil }
