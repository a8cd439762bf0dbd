package session_test

import (
	"testing"
	"time"

	session "github.com/eventify/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionHubStartsEmpty(t *testing.T) {
	hub := session.NewSessionHub()

	current := hub.Current()
	assert.False(t, current.LoggedIn())
	assert.Empty(t, current.ID)
}

func TestSessionHubPublish(t *testing.T) {
	hub := session.NewSessionHub()

	ok := hub.Publish(testClaims())
	require.True(t, ok)

	current := hub.Current()
	assert.True(t, current.LoggedIn())
	assert.Equal(t, "member-123", current.ID)
	assert.Equal(t, "kim.minji", current.Username)
	assert.Equal(t, session.MemberTypeUser, current.MemberType)
}

func TestSessionHubPublishRejectsIncompleteClaims(t *testing.T) {
	hub := session.NewSessionHub()
	require.True(t, hub.Publish(testClaims()))

	tests := []struct {
		name   string
		claims *session.MemberClaims
	}{
		{
			name:   "Nil claims",
			claims: nil,
		},
		{
			name:   "Missing identity",
			claims: &session.MemberClaims{Username: "no-id"},
		},
		{
			name: "Blocked member",
			claims: func() *session.MemberClaims {
				c := testClaims()
				c.MemberStatus = session.MemberStatusBlocked
				return c
			}(),
		},
		{
			name: "Inactive member",
			claims: func() *session.MemberClaims {
				c := testClaims()
				c.MemberStatus = session.MemberStatusInactive
				return c
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, hub.Publish(tt.claims))
			// the previously published session must survive a rejected publish
			assert.Equal(t, "member-123", hub.Current().ID)
		})
	}
}

func TestSessionHubPublishFromToken(t *testing.T) {
	hub := session.NewSessionHub()

	assert.True(t, hub.PublishFromToken(mintToken(t, testClaims(), time.Hour)))
	assert.Equal(t, "member-123", hub.Current().ID)

	assert.False(t, hub.PublishFromToken("garbage"))
}

func TestSessionHubClear(t *testing.T) {
	hub := session.NewSessionHub()
	require.True(t, hub.Publish(testClaims()))

	hub.Clear()
	assert.False(t, hub.Current().LoggedIn())

	// clearing an already empty hub stays empty
	hub.Clear()
	assert.False(t, hub.Current().LoggedIn())
}

func TestSessionHubOnChange(t *testing.T) {
	hub := session.NewSessionHub()

	var events []session.Account
	unsubscribe := hub.OnChange(func(a session.Account) {
		events = append(events, a)
	})

	require.True(t, hub.Publish(testClaims()))
	hub.Clear()

	require.Len(t, events, 2)
	assert.Equal(t, "member-123", events[0].ID)
	assert.False(t, events[1].LoggedIn())

	unsubscribe()
	// unsubscribing twice is harmless
	unsubscribe()

	require.True(t, hub.Publish(testClaims()))
	assert.Len(t, events, 2)
}

func TestSessionHubMultipleSubscribers(t *testing.T) {
	hub := session.NewSessionHub()

	first := 0
	second := 0
	hub.OnChange(func(session.Account) { first++ })
	stop := hub.OnChange(func(session.Account) { second++ })

	require.True(t, hub.Publish(testClaims()))
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)

	stop()
	hub.Clear()
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}

func TestSessionHubNormalizesPhone(t *testing.T) {
	hub := session.NewSessionHub()

	claims := testClaims()
	claims.Phone = "+82 10-1234-5678"
	require.True(t, hub.Publish(claims))

	assert.Equal(t, "+821012345678", hub.Current().Phone)

	// numbers without a country prefix pass through untouched
	claims = testClaims()
	claims.Phone = "010-1234-5678"
	require.True(t, hub.Publish(claims))
	assert.Equal(t, "010-1234-5678", hub.Current().Phone)
}
