package domain

import "time"

// Role is the coarse-grained identity category that determines a fixed permission set.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleSoloUser    Role = "SOLO_USER"
	RoleTeamMember  Role = "TEAM_MEMBER"
	RoleAgencyOwner Role = "AGENCY_OWNER"
	RoleGuest       Role = "GUEST"
)

// DefaultRole is assigned to new accounts and to sessions created without a role.
const DefaultRole = RoleSoloUser

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSoloUser, RoleTeamMember, RoleAgencyOwner, RoleGuest:
		return true
	}
	return false
}

// Permission is a named capability gating a specific action.
type Permission string

const (
	PermViewDashboard     Permission = "view_dashboard"
	PermEditDashboard     Permission = "edit_dashboard"
	PermManageUsers       Permission = "manage_users"
	PermManageRoles       Permission = "manage_roles"
	PermViewAnalytics     Permission = "view_analytics"
	PermExportData        Permission = "export_data"
	PermManageSettings    Permission = "manage_settings"
	PermManageTeamMembers Permission = "manage_team_members"
)

// User is the persisted account record.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	Company        string    `json:"company,omitempty"`
	PasswordDigest string    `json:"-"`
	Role           Role      `json:"role"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Identity projects the record into the minimal shape carried by sessions.
func (u *User) Identity() AuthenticatedUser {
	return AuthenticatedUser{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// AuthenticatedUser is the read-only view of the caller exposed to guards and pages.
type AuthenticatedUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}
