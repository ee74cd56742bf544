package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse capability group a user belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleEditor  Role = "editor"
	RoleMember  Role = "member"
)

// String returns the role as stored in the database.
func (r Role) String() string { return string(r) }

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEditor, RoleMember:
		return true
	}
	return false
}

// User is a registered account.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	IsStaff      bool
	CreatedAt    time.Time
}
