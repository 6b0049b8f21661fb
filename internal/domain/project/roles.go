package project

import "strings"

// Role is the backend user role of the caller.
type Role string

const (
	RoleRootSuperadmin Role = "ROOT_SUPERADMIN"
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
)

// CanManageScopes reports whether the role may create, edit or delete scopes.
func CanManageScopes(role Role) bool {
	switch Role(strings.ToUpper(strings.TrimSpace(string(role)))) {
	case RoleRootSuperadmin, RoleAdmin, RoleProjectManager:
		return true
	default:
		return false
	}
}
