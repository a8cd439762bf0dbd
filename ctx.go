package session

import (
	"context"

	"github.com/goliatone/go-router"
)

var accountCtxKey = &contextKey{"account"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithAccountContext sets the Account in the given context
func WithAccountContext(r context.Context, account Account) context.Context {
	return context.WithValue(r, accountCtxKey, account)
}

// AccountFromContext finds the account from the context.
func AccountFromContext(ctx context.Context) (Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(Account)
	return raw, ok
}

// WithClaimsContext sets the MemberClaims in the given context
func WithClaimsContext(r context.Context, claims *MemberClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the MemberClaims from the standard context
func ClaimsFromContext(ctx context.Context) (*MemberClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*MemberClaims)
	return raw, ok
}

// RouterClaims extracts the MemberClaims from the router context
func RouterClaims(ctx router.Context, key string) (*MemberClaims, bool) {
	if key == "" {
		key = KeyAccessToken
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(*MemberClaims)
	return claims, ok
}

// LoggedIn reports whether the standard context carries a published
// session.
func LoggedIn(ctx context.Context) bool {
	account, ok := AccountFromContext(ctx)
	return ok && account.LoggedIn()
}
