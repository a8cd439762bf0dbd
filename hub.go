package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionHub is the observable "current member" slot. It starts empty, is
// rehydrated from the stored token on boot, overwritten on login/signup,
// and reset on logout. Subscribers are notified synchronously, in no
// particular order, after every state change.
//
// The hub is owned by the application's composition root and passed by
// reference; it is not a package-level singleton.
type SessionHub struct {
	mu          sync.RWMutex
	current     Account
	subscribers map[uuid.UUID]func(Account)
	inspector   *TokenInspector
	logger      Logger
	now         func() time.Time
}

// SessionHubOption customizes a SessionHub.
type SessionHubOption func(*SessionHub)

// WithHubLogger overrides the default logger.
func WithHubLogger(logger Logger) SessionHubOption {
	return func(h *SessionHub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithHubClock injects a custom clock (useful for tests).
func WithHubClock(now func() time.Time) SessionHubOption {
	return func(h *SessionHub) {
		if now != nil {
			h.now = now
		}
	}
}

// WithHubInspector overrides the inspector used by PublishFromToken.
func WithHubInspector(inspector *TokenInspector) SessionHubOption {
	return func(h *SessionHub) {
		if inspector != nil {
			h.inspector = inspector
		}
	}
}

// NewSessionHub returns a hub holding the empty session.
func NewSessionHub(opts ...SessionHubOption) *SessionHub {
	h := &SessionHub{
		current:     emptyAccount(),
		subscribers: map[uuid.UUID]func(Account){},
		logger:      defLogger{},
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.inspector == nil {
		h.inspector = NewTokenInspector(WithInspectorLogger(h.logger), WithInspectorClock(h.now))
	}

	return h
}

// Publish overwrites the slot with the normalized projection of claims and
// notifies subscribers. Claims missing identity fields, or belonging to a
// blocked/inactive member, are rejected without mutating state.
func (h *SessionHub) Publish(claims *MemberClaims) bool {
	if claims == nil {
		h.logger.Error("refusing to publish nil claims")
		return false
	}

	if err := claims.Validate(); err != nil {
		h.logger.Error("refusing to publish claims without identity", "error", err)
		return false
	}

	if err := statusAuthError(claims.MemberStatus); err != nil {
		h.logger.Error("refusing to publish session for restricted member", "status", claims.MemberStatus, "error", err)
		return false
	}

	account := accountFromClaims(claims, h.now())

	h.mu.Lock()
	h.current = account
	listeners := h.listeners()
	h.mu.Unlock()

	h.notify(listeners, account)
	return true
}

// PublishFromToken decodes the token and publishes its claims. Returns
// false on decode or publish failure; never propagates an error.
func (h *SessionHub) PublishFromToken(tokenString string) bool {
	claims, err := h.inspector.DecodeClaims(tokenString)
	if err != nil {
		h.logger.Error("could not decode token for session publish", "error", err)
		return false
	}
	return h.Publish(claims)
}

// Clear resets the slot to the empty session and notifies subscribers.
func (h *SessionHub) Clear() {
	empty := emptyAccount()

	h.mu.Lock()
	h.current = empty
	listeners := h.listeners()
	h.mu.Unlock()

	h.notify(listeners, empty)
}

// Current returns the account snapshot. The zero Account means "nobody is
// logged in".
func (h *SessionHub) Current() Account {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnChange registers a callback invoked after every Publish/Clear. The
// returned function unsubscribes; calling it more than once is harmless.
func (h *SessionHub) OnChange(fn func(Account)) func() {
	if fn == nil {
		return func() {}
	}

	id := uuid.New()

	h.mu.Lock()
	h.subscribers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
}

// listeners must be called with the lock held.
func (h *SessionHub) listeners() []func(Account) {
	out := make([]func(Account), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		out = append(out, fn)
	}
	return out
}

func (h *SessionHub) notify(listeners []func(Account), account Account) {
	for _, fn := range listeners {
		fn(account)
	}
}
