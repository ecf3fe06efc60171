package components

import (
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
	"storefront-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewOrderCommands,
		NewReviewCommands,
		NewRotationPolicy,
		commands.NewCredentialCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
		queries.NewReviewQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewActorResolver,
	),
)

func NewReviewCommands(
	cfg config.Config,
	uow shared.UnitOfWork,
	storage shared.ObjectStorage,
	filter shared.CommentFilter,
	clk clock.Clock,
) commands.ReviewCommands {
	return commands.NewReviewCommands(uow, storage, filter, clk, cfg.Storage.Timeout)
}

func NewRotationPolicy(cfg config.Config) commands.RotationPolicy {
	return commands.RotationPolicy{
		CodeTTL:     cfg.Rotation.CodeTTL,
		MaxAttempts: cfg.Rotation.MaxAttempts,
	}
}
