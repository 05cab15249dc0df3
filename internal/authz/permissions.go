// Package authz holds the pure authorization core: the permission catalog,
// the role policy table and the role hierarchy guard. Everything here is
// deterministic and side-effect free; unknown input resolves to a denial,
// never a panic.
package authz

import "sort"

// Task permissions.
const (
	PermTasksRead    = "tasks.read"
	PermTasksCreate  = "tasks.create"
	PermTasksUpdate  = "tasks.update"
	PermTasksDelete  = "tasks.delete"
	PermTasksAssign  = "tasks.assign"
	PermTasksViewAll = "tasks.view_all"
)

// Project permissions.
const (
	PermProjectsRead    = "projects.read"
	PermProjectsCreate  = "projects.create"
	PermProjectsUpdate  = "projects.update"
	PermProjectsDelete  = "projects.delete"
	PermProjectsManage  = "projects.manage"
	PermProjectsViewAll = "projects.view_all"
)

// User and member permissions.
const (
	PermUsersRead   = "users.read"
	PermUsersInvite = "users.invite"
	PermUsersUpdate = "users.update"
	PermUsersManage = "users.manage"
)

// Role administration permissions.
const (
	PermRolesRead   = "roles.read"
	PermRolesManage = "roles.manage"
)

// Calendar permissions.
const (
	PermEventsRead   = "events.read"
	PermEventsCreate = "events.create"
	PermEventsUpdate = "events.update"
	PermEventsDelete = "events.delete"
)

// Export permissions.
const (
	PermExportsCreate   = "exports.create"
	PermExportsRead     = "exports.read"
	PermExportsCancel   = "exports.cancel"
	PermExportsDownload = "exports.download"
)

// Group names for the permission catalog.
const (
	GroupTasks    = "tasks"
	GroupProjects = "projects"
	GroupUsers    = "users"
	GroupRoles    = "roles"
	GroupCalendar = "calendar"
	GroupExports  = "exports"
)

// TaskScopes lists all permissions in the tasks group.
func TaskScopes() []string {
	return []string{
		PermTasksRead,
		PermTasksCreate,
		PermTasksUpdate,
		PermTasksDelete,
		PermTasksAssign,
		PermTasksViewAll,
	}
}

// ProjectScopes lists all permissions in the projects group.
func ProjectScopes() []string {
	return []string{
		PermProjectsRead,
		PermProjectsCreate,
		PermProjectsUpdate,
		PermProjectsDelete,
		PermProjectsManage,
		PermProjectsViewAll,
	}
}

// UserScopes lists all permissions in the users group.
func UserScopes() []string {
	return []string{
		PermUsersRead,
		PermUsersInvite,
		PermUsersUpdate,
		PermUsersManage,
	}
}

// RoleScopes lists all permissions in the roles group.
func RoleScopes() []string {
	return []string{
		PermRolesRead,
		PermRolesManage,
	}
}

// CalendarScopes lists all permissions in the calendar group.
func CalendarScopes() []string {
	return []string{
		PermEventsRead,
		PermEventsCreate,
		PermEventsUpdate,
		PermEventsDelete,
	}
}

// ExportScopes lists all permissions in the exports group.
func ExportScopes() []string {
	return []string{
		PermExportsCreate,
		PermExportsRead,
		PermExportsCancel,
		PermExportsDownload,
	}
}

// Groups returns the permission catalog partitioned into its named groups.
// The groups are pairwise disjoint and their union is the full catalog.
func Groups() map[string][]string {
	return map[string][]string{
		GroupTasks:    TaskScopes(),
		GroupProjects: ProjectScopes(),
		GroupUsers:    UserScopes(),
		GroupRoles:    RoleScopes(),
		GroupCalendar: CalendarScopes(),
		GroupExports:  ExportScopes(),
	}
}

// Catalog returns every permission in the system, sorted.
func Catalog() []string {
	var all []string
	for _, scopes := range Groups() {
		all = append(all, scopes...)
	}
	sort.Strings(all)
	return all
}
