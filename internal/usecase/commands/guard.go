package commands

import (
	"storefront-core/internal/domain/user"
	"storefront-core/internal/pkg/errs"
)

var (
	ErrNotAuthenticated = errs.Define("authentication required", errs.ErrUnauthorized)
	ErrAccountInactive  = errs.Define("account is inactive", errs.ErrForbidden)
	ErrAdminRequired    = errs.Define("administrator role required", errs.ErrForbidden)
)

// Guards run before any record is loaded.

func requireActor(actor *user.Actor) (user.Actor, error) {
	if actor == nil {
		return user.Actor{}, ErrNotAuthenticated
	}
	if !actor.IsActive {
		return user.Actor{}, ErrAccountInactive
	}
	return *actor, nil
}

func requireAdmin(actor *user.Actor) (user.Actor, error) {
	a, err := requireActor(actor)
	if err != nil {
		return user.Actor{}, err
	}
	if !a.IsAdmin() {
		return user.Actor{}, ErrAdminRequired
	}
	return a, nil
}
