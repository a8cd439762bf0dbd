package session_test

import (
	"context"
	"testing"
	"time"

	session "github.com/eventify/go-session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransport implements session.AuthTransport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Login(ctx context.Context, creds session.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) Signup(ctx context.Context, input session.SignupInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// MockBackend implements session.StorageBackend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockBackend) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockRedirector implements session.Redirector
type MockRedirector struct {
	mock.Mock
}

func (m *MockRedirector) Redirect(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockRedirector) Reload() error {
	args := m.Called()
	return args.Error(0)
}

// testConfig implements session.Config
type testConfig struct {
	endpoint  string
	loginPath string
}

func (c testConfig) GetEndpoint() string              { return c.endpoint }
func (c testConfig) GetLoginPath() string             { return c.loginPath }
func (c testConfig) GetHTTPTimeout() time.Duration    { return 5 * time.Second }
func (c testConfig) GetTokenKey() string              { return "accessToken" }
func (c testConfig) GetTokenLookup() string           { return "header:Authorization,cookie:accessToken" }
func (c testConfig) GetAuthScheme() string            { return "Bearer" }
func (c testConfig) GetCookieDuration() time.Duration { return 24 * time.Hour }
func (c testConfig) GetRejectedRouteKey() string      { return "rejected_route" }
func (c testConfig) GetRejectedRouteDefault() string  { return "/" }

var testSigningSecret = []byte("test-signing-secret")

func testClaims() *session.MemberClaims {
	return &session.MemberClaims{
		ID:           "member-123",
		Username:     "kim.minji",
		Name:         "Kim Minji",
		Email:        "minji@example.com",
		MemberType:   session.MemberTypeUser,
		MemberStatus: session.MemberStatusActive,
	}
}

func mintToken(t *testing.T, claims *session.MemberClaims, ttl time.Duration) string {
	t.Helper()

	token, _, err := session.MintSessionToken(testSigningSecret, claims, session.SessionTokenOptions{
		TTL: ttl,
	})
	require.NoError(t, err)
	return token
}

func mintExpiredToken(t *testing.T, claims *session.MemberClaims) string {
	t.Helper()

	token, _, err := session.MintSessionToken(testSigningSecret, claims, session.SessionTokenOptions{
		TTL:      time.Minute,
		IssuedAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	return token
}

func signRawClaims(t *testing.T, claims *session.MemberClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningSecret)
	require.NoError(t, err)
	return token
}
