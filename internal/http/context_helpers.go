package httpx

import (
	"context"

	"github.com/versetype/versetype-api/internal/ports"
)

type sessionTokenKey struct{}

type operatorKey struct{}

// SetSessionTokenInContext returns a child context carrying the caller's session token.
func SetSessionTokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

// SessionTokenFromContext returns the token stored by RequireSessionToken.
func SessionTokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(sessionTokenKey{}).(string)
	return tok
}

// SetOperatorInContext stores verified operator claims.
func SetOperatorInContext(ctx context.Context, claims ports.OperatorClaims) context.Context {
	return context.WithValue(ctx, operatorKey{}, claims)
}

// OperatorFromContext returns the operator set by RequireAdmin.
func OperatorFromContext(ctx context.Context) (ports.OperatorClaims, bool) {
	c, ok := ctx.Value(operatorKey{}).(ports.OperatorClaims)
	return c, ok
}
