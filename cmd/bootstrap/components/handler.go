package components

import (
	"storefront-core/internal/handler"
	"storefront-core/internal/handler/api"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/infra/objectstore"
	"storefront-core/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOrderHandler,
		api.NewReviewHandler,
		api.NewCredentialHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
		NewRouterDeps,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(order *api.OrderHandler, review *api.ReviewHandler, credential *api.CredentialHandler) handler.Handlers {
	return handler.Handlers{
		Order:      order,
		Review:     review,
		Credential: credential,
	}
}

func NewRouterDeps(
	cfg config.Config,
	logger *middleware.Logger,
	auth *middleware.AuthMiddleware,
	limiter middleware.RateLimiter,
	storage *objectstore.LocalStorage,
) handler.RouterDeps {
	return handler.RouterDeps{
		Config:      cfg,
		Logger:      logger,
		Auth:        auth,
		RateLimiter: limiter,
		MediaDir:    storage.Dir(),
	}
}
