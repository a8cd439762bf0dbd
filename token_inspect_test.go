package session_test

import (
	"testing"
	"time"

	session "github.com/eventify/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClaimsRoundTrip(t *testing.T) {
	claims := testClaims()
	claims.Phone = "+821012345678"
	token := mintToken(t, claims, time.Hour)

	inspector := session.NewTokenInspector()

	decoded, err := inspector.DecodeClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "member-123", decoded.ID)
	assert.Equal(t, "kim.minji", decoded.Username)
	assert.Equal(t, "minji@example.com", decoded.Email)
	assert.Equal(t, session.MemberTypeUser, decoded.MemberType)
	assert.Equal(t, session.MemberStatusActive, decoded.MemberStatus)
	assert.Equal(t, "member-123", decoded.MemberID())
}

func TestDecodeClaimsMalformedToken(t *testing.T) {
	inspector := session.NewTokenInspector()

	_, err := inspector.DecodeClaims("definitely-not-a-jwt")
	require.Error(t, err)
	assert.True(t, session.IsMalformedError(err))
}

func TestIsExpiredFailsClosed(t *testing.T) {
	inspector := session.NewTokenInspector()

	tests := []struct {
		name    string
		token   string
		expired bool
	}{
		{
			name:    "Undecodable token",
			token:   "garbage",
			expired: true,
		},
		{
			name:    "Token without expiry claim",
			token:   mintNoExpiryToken(t),
			expired: true,
		},
		{
			name:    "Future expiry",
			token:   mintToken(t, testClaims(), time.Hour),
			expired: false,
		},
		{
			name:    "Past expiry",
			token:   mintExpiredToken(t, testClaims()),
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, inspector.IsExpired(tt.token))
		})
	}
}

func TestIsExpiredBoundaryUsesEpochSeconds(t *testing.T) {
	issued := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	token, expiresAt, err := session.MintSessionToken(testSigningSecret, testClaims(), session.SessionTokenOptions{
		TTL:      time.Hour,
		IssuedAt: issued,
	})
	require.NoError(t, err)

	atExpiry := session.NewTokenInspector(session.WithInspectorClock(func() time.Time {
		return expiresAt
	}))
	// exp < now is the expired condition, exp == now still passes
	assert.False(t, atExpiry.IsExpired(token))

	justPast := session.NewTokenInspector(session.WithInspectorClock(func() time.Time {
		return expiresAt.Add(time.Second)
	}))
	assert.True(t, justPast.IsExpired(token))
}

func TestInspectorValidate(t *testing.T) {
	inspector := session.NewTokenInspector()

	claims, err := inspector.Validate(mintToken(t, testClaims(), time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "member-123", claims.ID)

	_, err = inspector.Validate(mintExpiredToken(t, testClaims()))
	require.Error(t, err)
	assert.True(t, session.IsTokenExpiredError(err))

	_, err = inspector.Validate("garbage")
	require.Error(t, err)
	assert.True(t, session.IsMalformedError(err))
}

// mintNoExpiryToken signs claims directly without an exp claim; the helper
// in mocks_test.go always sets one.
func mintNoExpiryToken(t *testing.T) string {
	t.Helper()

	token, _, err := session.MintSessionToken(testSigningSecret, testClaims(), session.SessionTokenOptions{
		TTL: time.Hour,
	})
	require.NoError(t, err)

	// re-sign without expiry
	inspector := session.NewTokenInspector()
	claims, err := inspector.DecodeClaims(token)
	require.NoError(t, err)
	claims.ExpiresAt = nil

	return signRawClaims(t, claims)
}
