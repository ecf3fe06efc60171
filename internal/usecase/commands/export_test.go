package commands

import (
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/usecase/shared"
)

// NewCredentialCommandsWithCodes lets tests choose the issued codes.
func NewCredentialCommandsWithCodes(
	uow shared.UnitOfWork,
	dispatcher shared.NotificationDispatcher,
	clk clock.Clock,
	policy RotationPolicy,
	codes ...string,
) CredentialCommands {
	next := 0
	return newCredentialCommands(uow, dispatcher, clk, policy, func() (string, error) {
		code := codes[next%len(codes)]
		next++
		return code, nil
	})
}
