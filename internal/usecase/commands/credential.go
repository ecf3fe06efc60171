package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront-core/internal/domain/credential"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/mailtmpl"
	"storefront-core/internal/pkg/password"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrWrongPassword    = errs.Define("current password is incorrect", errs.ErrInvalidInput)
	ErrWeakPassword     = errs.Define("new password must be at least 8 characters long", errs.ErrInvalidInput)
	ErrPasswordTooLong  = errs.Define("new password must not exceed 72 bytes", errs.ErrInvalidInput)
	ErrIncorrectCode    = errs.Define("password change code is incorrect", errs.ErrIncorrectCode)
	ErrTicketSuperseded = errs.Define("password change code is no longer valid", errs.ErrInvalidOrExpired)
)

// ticketClearTimeout bounds the cleanup that runs when the code email could not be sent.
const ticketClearTimeout = 5 * time.Second

type RotationPolicy struct {
	CodeTTL     time.Duration
	MaxAttempts int
}

type CredentialCommands interface {
	RequestRotation(ctx context.Context, actor *user.Actor, currentPassword string) error
	VerifyAndRotate(ctx context.Context, actor *user.Actor, code, newPassword string) error
}

type credentialCommandsImpl struct {
	uow        shared.UnitOfWork
	dispatcher shared.NotificationDispatcher
	clock      clock.Clock
	policy     RotationPolicy
	newCode    func() (string, error)
}

func NewCredentialCommands(
	uow shared.UnitOfWork,
	dispatcher shared.NotificationDispatcher,
	clk clock.Clock,
	policy RotationPolicy,
) CredentialCommands {
	return newCredentialCommands(uow, dispatcher, clk, policy, credential.GenerateCode)
}

func newCredentialCommands(
	uow shared.UnitOfWork,
	dispatcher shared.NotificationDispatcher,
	clk clock.Clock,
	policy RotationPolicy,
	newCode func() (string, error),
) *credentialCommandsImpl {
	if policy.CodeTTL <= 0 {
		policy.CodeTTL = credential.CodeTTL
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = credential.MaxAttempts
	}
	return &credentialCommandsImpl{
		uow:        uow,
		dispatcher: dispatcher,
		clock:      clk,
		policy:     policy,
		newCode:    newCode,
	}
}

func (c *credentialCommandsImpl) RequestRotation(ctx context.Context, actor *user.Actor, currentPassword string) error {
	a, err := requireActor(actor)
	if err != nil {
		return err
	}

	u, err := c.loadUser(ctx, a.ID)
	if err != nil {
		return err
	}

	if err = password.Compare(u.PasswordHash(), currentPassword); err != nil {
		if errs.Is(err, password.ErrMismatch) {
			return ErrWrongPassword
		}
		return errs.Wrap(err, "verify current password")
	}

	code, err := c.newCode()
	if err != nil {
		return errs.Mark(err, errs.ErrDependencyFailure)
	}
	digest, err := password.Hash(code)
	if err != nil {
		return errs.Mark(err, errs.ErrDependencyFailure)
	}

	msg, err := mailtmpl.RenderRotationCode(mailtmpl.RotationCode{
		Code:        code,
		ValidFor:    c.policy.CodeTTL,
		MaxAttempts: c.policy.MaxAttempts,
	})
	if err != nil {
		return err
	}

	ticket := credential.NewTicket(digest, c.clock.Now(), c.policy.CodeTTL, c.policy.MaxAttempts)
	err = c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().SaveRotationTicket(ctx, u.ID(), ticket)
	})
	if err != nil {
		return err
	}

	userID := u.ID()
	c.dispatcher.Dispatch(shared.Email{
		To:      u.Email().Value(),
		Subject: msg.Subject,
		Body:    msg.Body,
	}, func(sendErr error) {
		c.discardTicket(userID, digest, sendErr)
	})
	return nil
}

func (c *credentialCommandsImpl) VerifyAndRotate(ctx context.Context, actor *user.Actor, code, newPassword string) error {
	a, err := requireActor(actor)
	if err != nil {
		return err
	}

	u, err := c.loadUser(ctx, a.ID)
	if err != nil {
		return err
	}

	ticket := u.RotationTicket()
	if err = credential.Check(ticket, c.clock.Now()); err != nil {
		return err
	}

	if !password.IsStrongEnough(newPassword) {
		return ErrWeakPassword
	}
	if !password.FitsLimit(newPassword) {
		return ErrPasswordTooLong
	}

	if err = password.Compare(ticket.CodeDigest, code); err != nil {
		if !errs.Is(err, password.ErrMismatch) {
			return errs.Wrap(err, "verify password change code")
		}
		return c.recordFailedAttempt(ctx, u.ID(), ticket.CodeDigest)
	}

	newHash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	var rotated bool
	err = c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var uerr error
		rotated, uerr = tx.Users().RotatePasswordIfDigest(ctx, u.ID(), ticket.CodeDigest, newHash, c.clock.Now())
		return uerr
	})
	if err != nil {
		return err
	}
	if !rotated {
		return ErrTicketSuperseded
	}

	slog.Info("password rotated", "user_id", u.ID())
	return nil
}

func (c *credentialCommandsImpl) recordFailedAttempt(ctx context.Context, userID uuid.UUID, digest string) error {
	var counted bool
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var uerr error
		counted, uerr = tx.Users().IncrementRotationAttemptsIfDigest(ctx, userID, digest)
		return uerr
	})
	if err != nil {
		return err
	}
	if !counted {
		return ErrTicketSuperseded
	}
	return ErrIncorrectCode
}

func (c *credentialCommandsImpl) loadUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	var u *user.User
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		u, ferr = tx.Users().FindByID(ctx, userID)
		return ferr
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return u, nil
}

// discardTicket runs on the dispatcher goroutine. The clear is keyed on the
// digest so a ticket issued by a later request survives.
func (c *credentialCommandsImpl) discardTicket(userID uuid.UUID, digest string, sendErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), ticketClearTimeout)
	defer cancel()

	var cleared bool
	err := c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var uerr error
		cleared, uerr = tx.Users().ClearRotationTicketIfDigest(ctx, userID, digest)
		return uerr
	})
	if err != nil {
		slog.Error("failed to clear undeliverable password change code",
			"user_id", userID,
			"send_error", sendErr.Error(),
			"error", err.Error())
		return
	}
	slog.Warn("password change code email not delivered",
		"user_id", userID,
		"ticket_cleared", cleared,
		"error", sendErr.Error())
}
