package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	session "github.com/eventify/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphQLTransportLoginSuccess(t *testing.T) {
	token := mintToken(t, testClaims(), time.Hour)

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		// every exchange is unauthenticated
		assert.Empty(t, r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"signIn": map[string]any{"accessToken": token},
			},
		})
	}))
	defer server.Close()

	transport := session.NewGraphQLTransport(server.URL)

	got, err := transport.Login(context.Background(), session.Credentials{
		Identifier: "kim.minji",
		Secret:     "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, token, got)

	assert.Equal(t, "SignIn", gotBody["operationName"])
	variables := gotBody["variables"].(map[string]any)
	assert.Equal(t, "kim.minji", variables["username"])
	assert.Equal(t, "secret123", variables["password"])
}

func TestGraphQLTransportSignupSuccess(t *testing.T) {
	token := mintToken(t, testClaims(), time.Hour)

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"signUp": map[string]any{"accessToken": token},
			},
		})
	}))
	defer server.Close()

	transport := session.NewGraphQLTransport(server.URL)

	got, err := transport.Signup(context.Background(), session.SignupInput{
		Identifier:  "kim.minji",
		Secret:      "secret123",
		Email:       "minji@example.com",
		DisplayName: "Kim Minji",
		AccountType: session.MemberTypeUser,
	})
	require.NoError(t, err)
	assert.Equal(t, token, got)

	assert.Equal(t, "SignUp", gotBody["operationName"])
	variables := gotBody["variables"].(map[string]any)
	assert.Equal(t, "minji@example.com", variables["email"])
	assert.Equal(t, "USER", variables["memberType"])
}

func TestGraphQLTransportInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{
				{"message": "Please enter valid credentials"},
			},
		})
	}))
	defer server.Close()

	transport := session.NewGraphQLTransport(server.URL)

	_, err := transport.Login(context.Background(), session.Credentials{
		Identifier: "kim.minji",
		Secret:     "wrong",
	})
	require.Error(t, err)
	assert.True(t, session.IsInvalidCredentialsError(err))
}

func TestGraphQLTransportServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	transport := session.NewGraphQLTransport(server.URL)

	_, err := transport.Login(context.Background(), session.Credentials{
		Identifier: "kim.minji",
		Secret:     "secret123",
	})
	require.Error(t, err)
	assert.False(t, session.IsInvalidCredentialsError(err))
	assert.Contains(t, err.Error(), "authentication service")
}

func TestGraphQLTransportGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{
				{"message": "internal failure"},
			},
		})
	}))
	defer server.Close()

	transport := session.NewGraphQLTransport(server.URL)

	_, err := transport.Login(context.Background(), session.Credentials{
		Identifier: "kim.minji",
		Secret:     "secret123",
	})
	require.Error(t, err)
	assert.False(t, session.IsInvalidCredentialsError(err))
}

func TestGraphQLTransportContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	transport := session.NewGraphQLTransport(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := transport.Login(ctx, session.Credentials{
		Identifier: "kim.minji",
		Secret:     "secret123",
	})
	require.Error(t, err)
}

func TestGraphQLTransportUnreachableEndpoint(t *testing.T) {
	transport := session.NewGraphQLTransport("http://127.0.0.1:1")

	_, err := transport.Login(context.Background(), session.Credentials{
		Identifier: "kim.minji",
		Secret:     "secret123",
	})
	require.Error(t, err)
	assert.False(t, session.IsInvalidCredentialsError(err))
}
