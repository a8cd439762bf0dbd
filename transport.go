package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTransportTimeout = 15 * time.Second

const signInMutation = `mutation SignIn($username: String!, $password: String!) {
  signIn(username: $username, password: $password) {
    accessToken
  }
}`

const signUpMutation = `mutation SignUp($username: String!, $password: String!, $email: String!, $name: String!, $memberType: MemberType!) {
  signUp(username: $username, password: $password, email: $email, name: $name, memberType: $memberType) {
    accessToken
  }
}`

// GraphQLTransport exchanges credentials for a bearer token against the
// Eventify GraphQL endpoint. It is deliberately minimal: a fresh,
// unauthenticated POST per call, no caching, no retries. Cancellation and
// deadlines come from the caller's context.
type GraphQLTransport struct {
	endpoint string
	client   *http.Client
	logger   Logger
}

// GraphQLTransportOption customizes the transport.
type GraphQLTransportOption func(*GraphQLTransport)

// WithTransportLogger overrides the default logger.
func WithTransportLogger(logger Logger) GraphQLTransportOption {
	return func(t *GraphQLTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTransportHTTPClient overrides the HTTP client, e.g. to tune the
// timeout or inject a test round tripper.
func WithTransportHTTPClient(client *http.Client) GraphQLTransportOption {
	return func(t *GraphQLTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// NewGraphQLTransport builds a transport for the given endpoint.
func NewGraphQLTransport(endpoint string, opts ...GraphQLTransportOption) *GraphQLTransport {
	t := &GraphQLTransport{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTransportTimeout},
		logger:   defLogger{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Login runs the signIn mutation and returns the access token.
func (t *GraphQLTransport) Login(ctx context.Context, creds Credentials) (string, error) {
	return t.execute(ctx, "SignIn", "signIn", signInMutation, map[string]any{
		"username": creds.Identifier,
		"password": creds.Secret,
	})
}

// Signup runs the signUp mutation and returns the access token.
func (t *GraphQLTransport) Signup(ctx context.Context, input SignupInput) (string, error) {
	return t.execute(ctx, "SignUp", "signUp", signUpMutation, map[string]any{
		"username":   input.Identifier,
		"password":   input.Secret,
		"email":      input.Email,
		"name":       input.DisplayName,
		"memberType": input.AccountType,
	})
}

type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type graphqlEnvelope struct {
	Data map[string]struct {
		AccessToken string `json:"accessToken"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (t *GraphQLTransport) execute(ctx context.Context, operation, field, query string, variables map[string]any) (string, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:         query,
		OperationName: operation,
		Variables:     variables,
	})
	if err != nil {
		return "", transportFailure(err, operation, 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", transportFailure(err, operation, 0)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// every auth exchange is a fresh round trip
	req.Header.Set("Cache-Control", "no-store")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("auth transport request failed", "operation", operation, "error", err)
		return "", transportFailure(err, operation, 0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportFailure(err, operation, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.logger.Error("auth endpoint returned non-2xx", "operation", operation, "status", resp.StatusCode)
		return "", transportFailure(fmt.Errorf("unexpected status %d", resp.StatusCode), operation, resp.StatusCode)
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", transportFailure(err, operation, resp.StatusCode)
	}

	if len(envelope.Errors) > 0 {
		return "", t.classifyGraphQLErrors(operation, envelope)
	}

	return envelope.Data[field].AccessToken, nil
}

// classifyGraphQLErrors translates the endpoint's error entries: a
// credentials rejection becomes ErrInvalidCredentials, anything else the
// generic transport failure.
func (t *GraphQLTransport) classifyGraphQLErrors(operation string, envelope graphqlEnvelope) error {
	messages := make([]string, 0, len(envelope.Errors))
	for _, e := range envelope.Errors {
		messages = append(messages, e.Message)
	}

	for _, msg := range messages {
		if IsInvalidCredentialsError(fmt.Errorf("%s", msg)) {
			return ErrInvalidCredentials.Clone().WithMetadata(map[string]any{
				"operation": operation,
				"messages":  messages,
			})
		}
	}

	t.logger.Error("auth endpoint returned errors", "operation", operation, "messages", messages)
	return ErrTransportFailure.Clone().WithMetadata(map[string]any{
		"operation": operation,
		"messages":  messages,
	})
}

func transportFailure(err error, operation string, status int) error {
	richErr := ErrTransportFailure.Clone()
	richErr.Source = err

	meta := map[string]any{
		"operation": operation,
		"cause":     err.Error(),
	}
	if status != 0 {
		meta["status"] = status
	}

	return richErr.WithMetadata(meta)
}
