package usecase

import (
	"context"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/jwt"
	"storefront-core/internal/usecase/shared"
)

var ErrUnknownSubject = errs.Define("token subject does not exist", errs.ErrUnauthorized)

// ActorResolver turns a bearer token into the caller. Role and active flag are
// read from the user store so a demoted or disabled account loses access
// before its token expires.
type ActorResolver interface {
	Resolve(ctx context.Context, tokenString string) (*user.Actor, error)
}

type actorResolverImpl struct {
	jwtService *jwt.Service
	uow        shared.UnitOfWork
}

func NewActorResolver(jwtService *jwt.Service, uow shared.UnitOfWork) ActorResolver {
	return &actorResolverImpl{
		jwtService: jwtService,
		uow:        uow,
	}
}

func (r *actorResolverImpl) Resolve(ctx context.Context, tokenString string) (*user.Actor, error) {
	claims, err := r.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrUnauthorized)
	}

	var u *user.User
	err = r.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		u, ferr = tx.Users().FindByID(ctx, claims.UserID)
		return ferr
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, err
	}

	actor := u.Actor()
	return &actor, nil
}
