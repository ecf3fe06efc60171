package builder

import (
	"time"

	"storefront-core/internal/domain/credential"
	"storefront-core/internal/domain/user"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	Ticket       *credential.Ticket
	CreatedAt    time.Time
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:           uuid.New(),
		Email:        "shopper@example.com",
		PasswordHash: "hashed_password",
		Role:         "user",
		IsActive:     true,
		CreatedAt:    time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

// Build methods
func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}

	return user.Reconstruct(u.ID, email, u.PasswordHash, role, u.IsActive, u.Ticket, u.CreatedAt, u.CreatedAt), nil
}

func (u *UserBuilder) MustBuild() *user.User {
	usr, err := u.BuildDomain()
	if err != nil {
		panic(err)
	}
	return usr
}

func (u *UserBuilder) BuildActor() user.Actor {
	return user.Actor{ID: u.ID, Role: user.Role(u.Role), IsActive: u.IsActive}
}

// Fluent builder methods
func (u *UserBuilder) WithID(id uuid.UUID) *UserBuilder {
	u.ID = id
	return u
}

func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	u.PasswordHash = hash
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) WithTicket(t credential.Ticket) *UserBuilder {
	u.Ticket = &t
	return u
}

func (u *UserBuilder) AsAdmin() *UserBuilder {
	u.Role = "admin"
	u.Email = "admin@example.com"
	return u
}

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}
