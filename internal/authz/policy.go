package authz

import "sort"

// Role is one of the closed set of account roles. The string values are a
// wire contract shared with clients and the database.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleViewer    Role = "viewer"
	RoleDeveloper Role = "developer"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
)

// Set is a permission membership set.
type Set map[string]struct{}

// NewSet builds a Set from the given permissions.
func NewSet(perms ...string) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set.
func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether at least one required permission is in the set.
// An empty requirement list yields false: "any" of nothing is never
// satisfied.
func (s Set) HasAny(required ...string) bool {
	for _, p := range required {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every required permission is in the set. An empty
// requirement list yields true (vacuous truth), unlike HasAny.
func (s Set) HasAll(required ...string) bool {
	for _, p := range required {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// List returns the set's permissions, sorted.
func (s Set) List() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// The role policy table is authored explicitly per role rather than derived
// from authority weight: grants are not monotonic in seniority (developers
// hold tasks.delete, which managers do not).
var rolePolicies = map[Role]Set{
	RoleGuest: NewSet(
		PermTasksRead,
		PermProjectsRead,
	),
	RoleViewer: NewSet(
		PermTasksRead,
		PermProjectsRead,
		PermUsersRead,
		PermEventsRead,
		PermExportsRead,
	),
	RoleDeveloper: NewSet(
		PermTasksRead,
		PermTasksCreate,
		PermTasksUpdate,
		PermTasksDelete,
		PermTasksAssign,
		PermProjectsRead,
		PermUsersRead,
		PermEventsRead,
		PermEventsCreate,
		PermEventsUpdate,
		PermExportsCreate,
		PermExportsRead,
		PermExportsCancel,
		PermExportsDownload,
	),
	RoleManager: NewSet(
		PermTasksRead,
		PermTasksCreate,
		PermTasksUpdate,
		PermTasksAssign,
		PermTasksViewAll,
		PermProjectsRead,
		PermProjectsCreate,
		PermProjectsUpdate,
		PermProjectsManage,
		PermProjectsViewAll,
		PermUsersRead,
		PermUsersInvite,
		PermUsersUpdate,
		PermUsersManage,
		PermRolesRead,
		PermEventsRead,
		PermEventsCreate,
		PermEventsUpdate,
		PermEventsDelete,
		PermExportsCreate,
		PermExportsRead,
		PermExportsCancel,
		PermExportsDownload,
	),
	RoleAdmin: NewSet(Catalog()...),
}

// RolePermissions returns the permission set granted to role. Unknown roles
// resolve to the empty set so authorization fails closed. The result is a
// copy; callers may not mutate the policy table through it.
func RolePermissions(role Role) Set {
	granted, ok := rolePolicies[role]
	if !ok {
		return Set{}
	}
	out := make(Set, len(granted))
	for p := range granted {
		out[p] = struct{}{}
	}
	return out
}

// ValidRole reports whether role is part of the closed role set.
func ValidRole(role Role) bool {
	_, ok := rolePolicies[role]
	return ok
}

// IsAdminRole reports whether role can administer roles. It tests the
// resolved permission set, not the role name, so policy drift cannot
// desynchronize the two.
func IsAdminRole(role Role) bool {
	return RolePermissions(role).Has(PermRolesManage)
}

// CanManageUsers reports whether role can manage member accounts.
func CanManageUsers(role Role) bool {
	return RolePermissions(role).Has(PermUsersManage)
}

// CanManageProjects reports whether role can manage projects.
func CanManageProjects(role Role) bool {
	return RolePermissions(role).Has(PermProjectsManage)
}

// CanViewAllData reports whether role can see every task and project rather
// than only its own.
func CanViewAllData(role Role) bool {
	return RolePermissions(role).HasAll(PermTasksViewAll, PermProjectsViewAll)
}
