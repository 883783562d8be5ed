// Package models defines the server-side domain types shared by services,
// repositories and the transport layer.
package models

import "time"

// Role is an authorisation tier. There is no ordering between roles:
// policies list the exact roles they admit.
type Role string

const (
	RoleUser      Role = "User"
	RoleAdmin     Role = "Admin"
	RoleSuperuser Role = "Superuser"
)

// Roles is the complete role set.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperuser}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// Account is a registered identity. Identity is case-sensitive and unique.
type Account struct {
	Identity     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
