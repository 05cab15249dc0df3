// Package rbac enforces permission requirements on HTTP routes. Decisions
// come from the pure authz core; the acting user's role is re-resolved from
// storage on every request so an out-of-band role change takes effect at
// once instead of living on in a cached session.
package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// RoleResolver fetches the current role of a user. users.Repository
// satisfies this.
type RoleResolver interface {
	RoleOf(ctx context.Context, id int64) (authz.Role, error)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Roles  RoleResolver
	Logger *slog.Logger
}

// RequireAny ensures the current user holds at least one of the required
// permissions. With no requirements the route stays open.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			granted, ok := m.resolve(w, r)
			if !ok {
				return
			}
			if granted.HasAny(perms...) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission")
		})
	}
}

// RequireAll ensures the current user holds every required permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			granted, ok := m.resolve(w, r)
			if !ok {
				return
			}
			if granted.HasAll(perms...) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission")
		})
	}
}

// resolve loads the fresh permission set for the request's principal. It
// writes the error response itself and reports false when the request must
// not proceed.
func (m Middleware) resolve(w http.ResponseWriter, r *http.Request) (authz.Set, bool) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return nil, false
	}
	role, err := m.Roles.RoleOf(r.Context(), principal.UserID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac resolve role", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return nil, false
	}
	return authz.RolePermissions(role), true
}
