package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role identifiers.
const (
	RoleSuperAdmin  = 1
	RoleAdmin       = 2
	RoleRegularUser = 3
)

// Permission names.
const (
	PermManageTenants  = "manage_tenants"
	PermManageRooms    = "manage_rooms"
	PermManagePayments = "manage_payments"
	PermManageUsers    = "manage_users"
	PermViewReports    = "view_reports"
	PermSystemSettings = "system_settings"
)

// Role groups a set of permissions.
type Role struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// User is an operator account of the back office.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames lists the names of the user's roles.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Permissions returns the union of permissions granted by the user's roles.
func (u User) Permissions() []string {
	seen := make(map[string]struct{})
	var perms []string
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			perms = append(perms, p)
		}
	}
	return perms
}
