package auth

import (
	"context"
)

var identityCtxKey = &contextKey{"identity"}
var tokenCtxKey = &contextKey{"token"}

type contextKey struct {
	name string
}

// WithIdentity sets the authenticated user in the given context. This is
// the request-scoped replacement for a global current-user: every flow
// that needs the caller's identity takes it from the context it was
// handed, never from process state.
func WithIdentity(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, identityCtxKey, user)
}

// IdentityFrom finds the authenticated user in the context. The second
// return is false for anonymous requests.
func IdentityFrom(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*User)
	return raw, ok && raw != nil
}

// WithBearerToken records the raw token presented with the request, so a
// later single-token logout can revoke exactly that session.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey, token)
}

// BearerTokenFrom returns the raw token presented with the request.
func BearerTokenFrom(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(tokenCtxKey).(string)
	return raw, ok && raw != ""
}
