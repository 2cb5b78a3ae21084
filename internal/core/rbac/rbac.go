// Package rbac holds the static role to permission table and the pure
// predicates built on it. Nothing here performs I/O or keeps state.
package rbac

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/instroom/instroom-web/internal/core/domain"
)

// ErrAccessDenied is matched by every *AccessDeniedError.
var ErrAccessDenied = errors.New("access denied")

// roles lists every role in declaration order.
var roles = []domain.Role{
	domain.RoleAdmin,
	domain.RoleSoloUser,
	domain.RoleTeamMember,
	domain.RoleAgencyOwner,
	domain.RoleGuest,
}

// table is never handed out directly; RolePermissions returns copies.
var table = map[domain.Role][]domain.Permission{
	domain.RoleAdmin: {
		domain.PermViewDashboard,
		domain.PermEditDashboard,
		domain.PermManageUsers,
		domain.PermManageRoles,
		domain.PermViewAnalytics,
		domain.PermExportData,
		domain.PermManageSettings,
	},
	domain.RoleAgencyOwner: {
		domain.PermViewDashboard,
		domain.PermEditDashboard,
		domain.PermViewAnalytics,
		domain.PermManageTeamMembers,
		domain.PermExportData,
	},
	domain.RoleSoloUser: {
		domain.PermViewDashboard,
		domain.PermEditDashboard,
		domain.PermViewAnalytics,
	},
	domain.RoleTeamMember: {
		domain.PermViewDashboard,
		domain.PermViewAnalytics,
	},
	domain.RoleGuest: {},
}

// HasPermission reports whether role grants permission. Unknown roles grant nothing.
func HasPermission(role domain.Role, permission domain.Permission) bool {
	perms, ok := table[role]
	if !ok {
		return false
	}
	return slices.Contains(perms, permission)
}

// HasAnyPermission reports whether role grants at least one of permissions.
func HasAnyPermission(role domain.Role, permissions ...domain.Permission) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role grants every one of permissions.
// An empty list is trivially satisfied.
func HasAllPermissions(role domain.Role, permissions ...domain.Permission) bool {
	for _, p := range permissions {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// IsAllowedRole reports whether role is a member of allowed.
func IsAllowedRole(role domain.Role, allowed ...domain.Role) bool {
	return slices.Contains(allowed, role)
}

// RolePermissions returns a copy of the permissions granted to role,
// or an empty slice when the role is unknown.
func RolePermissions(role domain.Role) []domain.Permission {
	perms := table[role]
	out := make([]domain.Permission, len(perms))
	copy(out, perms)
	return out
}

// Roles returns every defined role.
func Roles() []domain.Role {
	return slices.Clone(roles)
}

func CanAccessDashboard(role domain.Role) bool {
	return HasPermission(role, domain.PermViewDashboard)
}

func CanEditDashboard(role domain.Role) bool {
	return HasPermission(role, domain.PermEditDashboard)
}

func IsAdmin(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// AccessDeniedError names the requirement a role failed to meet.
type AccessDeniedError struct {
	Role       domain.Role
	Permission domain.Permission // set when a permission was required
	Allowed    []domain.Role     // set when a role was required
}

func (e *AccessDeniedError) Error() string {
	if e.Permission != "" {
		return fmt.Sprintf("Access denied. Required permission: %s", e.Permission)
	}
	names := make([]string, len(e.Allowed))
	for i, r := range e.Allowed {
		names[i] = string(r)
	}
	return fmt.Sprintf("Access denied. Allowed roles: %s", strings.Join(names, ", "))
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

// RequirePermission is HasPermission for callers that abort instead of branching.
func RequirePermission(role domain.Role, permission domain.Permission) error {
	if !HasPermission(role, permission) {
		return &AccessDeniedError{Role: role, Permission: permission}
	}
	return nil
}

// RequireRole is IsAllowedRole for callers that abort instead of branching.
func RequireRole(role domain.Role, allowed ...domain.Role) error {
	if !IsAllowedRole(role, allowed...) {
		return &AccessDeniedError{Role: role, Allowed: slices.Clone(allowed)}
	}
	return nil
}
