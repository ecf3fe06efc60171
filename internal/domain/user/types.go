package user

import "github.com/google/uuid"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Actor is the authenticated caller as resolved by the identity middleware.
type Actor struct {
	ID       uuid.UUID
	Role     Role
	IsActive bool
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
