package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SyncSessionMessage asks the handler to reconcile the hub with whatever
// the token store currently holds, e.g. after another tab logged in or
// out.
type SyncSessionMessage struct {
	// Reason is recorded in logs only.
	Reason string `json:"reason"`
}

func (e SyncSessionMessage) Type() string { return "session.sync" }

// RevokeSessionMessage tears the session down without a redirect.
type RevokeSessionMessage struct {
	Reason string `json:"reason"`
}

func (e RevokeSessionMessage) Type() string { return "session.revoke" }

// SyncSessionHandler rehydrates or clears the hub based on the stored
// token and the login/logout markers.
type SyncSessionHandler struct {
	manager *Manager
}

func NewSyncSessionHandler(manager *Manager) *SyncSessionHandler {
	return &SyncSessionHandler{manager: manager}
}

func (h *SyncSessionHandler) Execute(ctx context.Context, event SyncSessionMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during session sync",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SyncSessionHandler) execute(ctx context.Context, event SyncSessionMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	lastLogin, _ := h.manager.Store().LastLogin(ctx)
	lastLogout, _ := h.manager.Store().LastLogout(ctx)

	// a logout newer than the last login wins even if a stale token
	// is still readable
	if !lastLogout.IsZero() && lastLogout.After(lastLogin) {
		h.manager.logger.Info("session sync found newer logout marker", "reason", event.Reason)
		h.manager.Logout(ctx, false)
		return nil
	}

	if h.manager.RestoreSession(ctx) {
		h.manager.logger.Info("session sync rehydrated session", "reason", event.Reason)
		return nil
	}

	if h.manager.Current().LoggedIn() {
		h.manager.logger.Info("session sync clearing stale session", "reason", event.Reason)
		h.manager.Logout(ctx, false)
	}

	return nil
}

// RevokeSessionHandler clears both the store and the hub.
type RevokeSessionHandler struct {
	manager *Manager
}

func NewRevokeSessionHandler(manager *Manager) *RevokeSessionHandler {
	return &RevokeSessionHandler{manager: manager}
}

func (h *RevokeSessionHandler) Execute(ctx context.Context, event RevokeSessionMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during session revocation",
		)
	default:
		h.manager.logger.Info("revoking session", "reason", event.Reason)
		h.manager.Logout(ctx, false)
		return nil
	}
}
