package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// PermissionsHandler exposes the permission catalog and the caller's own
// resolved grants.
type PermissionsHandler struct {
	rbac  Middleware
	roles RoleResolver
}

// NewPermissionsHandler builds a PermissionsHandler instance.
func NewPermissionsHandler(rbac Middleware, roles RoleResolver) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac, roles: roles}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/me", h.myPermissions)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(authz.PermRolesRead))
		r.Get("/", h.listCatalog)
	})
}

func (h *PermissionsHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"groups": authz.Groups(),
	})
}

// myPermissions returns the caller's freshly resolved permission set, so
// clients can hide controls without hardcoding the policy table.
func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	role, err := h.roles.RoleOf(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":        role,
		"weight":      authz.Weight(role),
		"permissions": authz.RolePermissions(role).List(),
	})
}
