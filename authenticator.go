package session

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// Manager orchestrates the authentication flows. Every flow guarantees
// that on exit the TokenStore and the SessionHub agree: both empty, or
// both reflecting the same valid token. There is no path that leaves a
// saved token without a published session or vice versa.
type Manager struct {
	transport  AuthTransport
	store      *TokenStore
	hub        *SessionHub
	inspector  *TokenInspector
	validator  TokenValidator
	redirector Redirector
	logger     Logger
	loginPath  string
	now        func() time.Time
}

// NewManager returns a Manager over the given transport. The default
// storage is in-memory; web embeddings swap in a durable backend with
// WithStorage.
func NewManager(transport AuthTransport, cfg Config) *Manager {
	loginPath := "/login"
	if cfg != nil && cfg.GetLoginPath() != "" {
		loginPath = cfg.GetLoginPath()
	}

	logger := defLogger{}
	inspector := NewTokenInspector(WithInspectorLogger(logger))

	m := &Manager{
		transport:  transport,
		store:      NewTokenStore(NewMemoryBackend(), WithTokenStoreLogger(logger)),
		hub:        NewSessionHub(WithHubLogger(logger), WithHubInspector(inspector)),
		inspector:  inspector,
		redirector: noopRedirector{},
		logger:     logger,
		loginPath:  loginPath,
		now:        time.Now,
	}
	m.validator = m.inspector

	return m
}

// WithLogger sets the logger for the manager and its owned collaborators.
func (m *Manager) WithLogger(logger Logger) *Manager {
	if logger == nil {
		return m
	}

	m.logger = logger
	m.inspector = NewTokenInspector(WithInspectorLogger(logger), WithInspectorClock(m.now))
	m.store = NewTokenStore(m.store.backend, WithTokenStoreLogger(logger), WithTokenStoreClock(m.now))
	m.hub = NewSessionHub(WithHubLogger(logger), WithHubInspector(m.inspector), WithHubClock(m.now))
	if m.validator == nil {
		m.validator = m.inspector
	}
	return m
}

// WithStorage rebuilds the token store over the given backend.
func (m *Manager) WithStorage(backend StorageBackend) *Manager {
	m.store = NewTokenStore(backend, WithTokenStoreLogger(m.logger), WithTokenStoreClock(m.now))
	return m
}

// WithValidator sets a custom token validator, e.g. the JWKS-verified one
// from provider/jwks. The unverified inspector remains the expiry
// authority for the commit path.
func (m *Manager) WithValidator(validator TokenValidator) *Manager {
	if validator != nil {
		m.validator = validator
	}
	return m
}

// WithRedirector sets the post-logout navigation strategy.
func (m *Manager) WithRedirector(redirector Redirector) *Manager {
	if redirector != nil {
		m.redirector = redirector
	}
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now == nil {
		return m
	}

	m.now = now
	m.inspector = NewTokenInspector(WithInspectorLogger(m.logger), WithInspectorClock(now))
	m.store = NewTokenStore(m.store.backend, WithTokenStoreLogger(m.logger), WithTokenStoreClock(now))
	m.hub = NewSessionHub(WithHubLogger(m.logger), WithHubInspector(m.inspector), WithHubClock(now))
	return m
}

// Hub exposes the session hub for subscription and reads.
func (m *Manager) Hub() *SessionHub {
	return m.hub
}

// Store exposes the token store.
func (m *Manager) Store() *TokenStore {
	return m.store
}

// Validator returns the configured token validator.
func (m *Manager) Validator() TokenValidator {
	return m.validator
}

// Current returns the published account snapshot.
func (m *Manager) Current() Account {
	return m.hub.Current()
}

// OnChange subscribes to session changes; see SessionHub.OnChange.
func (m *Manager) OnChange(fn func(Account)) func() {
	return m.hub.OnChange(fn)
}

// Login exchanges credentials for a token and commits it. On any failure
// both the store and the hub are cleared before the error is returned.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (Account, error) {
	if err := validateCredentials(identifier, secret); err != nil {
		m.cleanup(ctx)
		return emptyAccount(), err
	}

	token, err := m.transport.Login(ctx, Credentials{Identifier: identifier, Secret: secret})
	if err != nil {
		m.logger.Error("login transport error", "identifier", identifier, "error", err)
		m.cleanup(ctx)
		return emptyAccount(), normalizeTransportError(err)
	}

	account, err := m.commit(ctx, token)
	if err != nil {
		m.logger.Error("login commit failed", "identifier", identifier, "error", err)
		return emptyAccount(), err
	}

	m.logger.Info("login succeeded", "member_id", account.ID, "username", account.Username)
	return account, nil
}

// Signup registers a new member and commits the returned token, following
// the same all-or-nothing path as Login.
func (m *Manager) Signup(ctx context.Context, input SignupInput) (Account, error) {
	if err := validateSignup(input); err != nil {
		m.cleanup(ctx)
		return emptyAccount(), err
	}

	token, err := m.transport.Signup(ctx, input)
	if err != nil {
		m.logger.Error("signup transport error", "identifier", input.Identifier, "error", err)
		m.cleanup(ctx)
		return emptyAccount(), normalizeTransportError(err)
	}

	account, err := m.commit(ctx, token)
	if err != nil {
		m.logger.Error("signup commit failed", "identifier", input.Identifier, "error", err)
		return emptyAccount(), err
	}

	m.logger.Info("signup succeeded", "member_id", account.ID, "username", account.Username)
	return account, nil
}

// Logout clears the store and the hub unconditionally; a failure in one
// never prevents the other. With redirect set it navigates to the login
// entry point, and any failure along the way degrades to a full reload so
// no stale session view survives. Logout never surfaces an error.
func (m *Manager) Logout(ctx context.Context, redirect bool) {
	degraded := false

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("logout could not clear token store", "error", err)
		degraded = true
	}

	m.hub.Clear()

	if redirect {
		if err := m.redirector.Redirect(m.loginPath); err != nil {
			m.logger.Error("logout redirect failed", "error", err)
			degraded = true
		}
	}

	if degraded {
		if err := m.redirector.Reload(); err != nil {
			m.logger.Error("logout reload fallback failed", "error", err)
		}
	}
}

// RestoreSession rehydrates the hub from the stored token, typically on
// boot. Returns true when a session was published.
func (m *Manager) RestoreSession(ctx context.Context) bool {
	token, ok := m.ValidToken(ctx)
	if !ok {
		return false
	}

	if !m.hub.PublishFromToken(token) {
		// a token we cannot publish must not linger
		m.cleanup(ctx)
		return false
	}

	return true
}

// ValidToken is the single entry point for "is the stored token usable":
// it reads the store and checks expiry, clearing both store and hub when
// the token has lapsed.
func (m *Manager) ValidToken(ctx context.Context) (string, bool) {
	token, ok := m.store.Read(ctx)
	if !ok {
		return "", false
	}

	if m.inspector.IsExpired(token) {
		m.logger.Info("stored token expired, clearing session")
		m.cleanup(ctx)
		return "", false
	}

	return token, true
}

// commit persists the token and publishes the session, or clears both.
func (m *Manager) commit(ctx context.Context, token string) (Account, error) {
	if token == "" {
		m.cleanup(ctx)
		return emptyAccount(), ErrNoToken
	}

	if m.inspector.IsExpired(token) {
		m.cleanup(ctx)
		return emptyAccount(), ErrTokenExpiredOnArrival
	}

	if err := m.store.Save(ctx, token); err != nil {
		m.cleanup(ctx)
		return emptyAccount(), err
	}

	if !m.hub.PublishFromToken(token) {
		m.cleanup(ctx)
		return emptyAccount(), ErrUnableToDecodeClaims
	}

	return m.hub.Current(), nil
}

// cleanup is the idempotent all-or-nothing guard: wipe both sides so no
// partial session survives a failed flow.
func (m *Manager) cleanup(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("cleanup could not clear token store", "error", err)
	}
	m.hub.Clear()
}

func validateCredentials(identifier, secret string) error {
	creds := Credentials{Identifier: identifier, Secret: secret}

	vErr := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&creds,
			validation.Field(&creds.Identifier, validation.Required),
			validation.Field(&creds.Secret, validation.Required),
		)
	}, "Invalid login request payload")

	if vErr != nil {
		return ErrMissingCredentials.Clone().WithMetadata(map[string]any{
			"validation": vErr.Error(),
		})
	}
	return nil
}

func validateSignup(input SignupInput) error {
	vErr := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&input,
			validation.Field(&input.Identifier, validation.Required),
			validation.Field(&input.Secret, validation.Required),
			validation.Field(&input.Email, validation.Required, is.Email),
			validation.Field(&input.DisplayName, validation.Required),
			validation.Field(&input.AccountType, validation.Required),
		)
	}, "Invalid signup request payload")

	if vErr != nil {
		return ErrMissingSignupFields.Clone().WithMetadata(map[string]any{
			"validation": vErr.Error(),
		})
	}
	return nil
}

// normalizeTransportError maps arbitrary transport failures onto the error
// taxonomy callers are expected to display.
func normalizeTransportError(err error) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	if IsInvalidCredentialsError(err) {
		clone := ErrInvalidCredentials.Clone()
		clone.Source = err
		return clone
	}

	clone := ErrTransportFailure.Clone()
	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"cause": err.Error(),
	})
}
