package shared

import (
	"context"

	"github.com/taskhive/taskhive/internal/authz"
)

// Principal identifies the authenticated actor for the current request. The
// role carried here is only a hint from the token; authorization re-resolves
// the role from storage on every gated action.
type Principal struct {
	UserID   int64
	Username string
	Role     authz.Role
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. The second
// result is false for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
