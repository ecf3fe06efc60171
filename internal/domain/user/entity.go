package user

import (
	"time"

	"storefront-core/internal/domain/credential"

	"github.com/google/uuid"
)

// User holds the credentials the rotation machine works on. Profile data lives
// outside this module.
type User struct {
	id             uuid.UUID
	email          Email
	passwordHash   string
	role           Role
	isActive       bool
	rotationTicket *credential.Ticket
	createdAt      time.Time
	updatedAt      time.Time
}

func NewUser(email Email, passwordHash string, role Role, now time.Time) *User {
	return &User{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isActive:     true,
		createdAt:    now,
		updatedAt:    now,
	}
}

func Reconstruct(
	id uuid.UUID,
	email Email,
	passwordHash string,
	role Role,
	isActive bool,
	ticket *credential.Ticket,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:             id,
		email:          email,
		passwordHash:   passwordHash,
		role:           role,
		isActive:       isActive,
		rotationTicket: ticket,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (u *User) Actor() Actor {
	return Actor{ID: u.id, Role: u.role, IsActive: u.isActive}
}

func (u *User) ID() uuid.UUID                      { return u.id }
func (u *User) Email() Email                       { return u.email }
func (u *User) PasswordHash() string               { return u.passwordHash }
func (u *User) Role() Role                         { return u.role }
func (u *User) IsActive() bool                     { return u.isActive }
func (u *User) RotationTicket() *credential.Ticket { return u.rotationTicket }
func (u *User) CreatedAt() time.Time               { return u.createdAt }
func (u *User) UpdatedAt() time.Time               { return u.updatedAt }
