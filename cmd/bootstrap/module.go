package bootstrap

import (
	"storefront-core/cmd/bootstrap/components"
	"storefront-core/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
)

// Module is the full serve graph. Callers add the *gin.Engine.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	components.ClockModule,
	JWTModule,
	DBModule,
	components.InfraModule,
	components.UseCaseModule,
	components.HandlerModule,
)
