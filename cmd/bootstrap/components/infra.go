package components

import (
	"context"
	"fmt"
	"log/slog"

	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/infra/events"
	"storefront-core/internal/infra/notify"
	"storefront-core/internal/infra/objectstore"
	"storefront-core/internal/infra/ratelimit"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/profanity"
	"storefront-core/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var ClockModule = fx.Module("clock",
	fx.Provide(clock.NewRealClock),
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		NewLocalStorage,
		func(s *objectstore.LocalStorage) shared.ObjectStorage { return s },
		NewMailer,
		NewDispatcher,
		func(d *notify.Dispatcher) shared.NotificationDispatcher { return d },
		NewEventPublisher,
		NewRateLimiter,
		fx.Annotate(
			profanity.Default,
			fx.As(new(shared.CommentFilter)),
		),
	),
)

func NewLocalStorage(cfg config.Config) (*objectstore.LocalStorage, error) {
	return objectstore.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.BaseURL)
}

func NewMailer(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.Mailer, error) {
	switch cfg.Mail.Driver {
	case "log", "":
		return notify.NewLogMailer(cfg.Mail.From, logger), nil
	case "rabbitmq":
		m := notify.NewRabbitMQMailer(cfg.Mail.AMQPURL, cfg.Mail.Queue, cfg.Mail.From)
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return m.Close()
			},
		})
		return m, nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q", cfg.Mail.Driver)
	}
}

// NewDispatcher drains in-flight emails on shutdown so a rotation code is not
// lost between the response and the send.
func NewDispatcher(lc fx.Lifecycle, cfg config.Config, mailer shared.Mailer, logger *slog.Logger) *notify.Dispatcher {
	d := notify.NewDispatcher(mailer, cfg.Mail.SendTimeout, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return d.Wait(ctx)
		},
	})
	return d
}

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.EventPublisher, error) {
	switch cfg.Events.Driver {
	case "none", "":
		return events.NoopPublisher{}, nil
	case "kafka":
		p := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.Buffer, logger)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return p.Close(ctx)
			},
		})
		logger.Info("publishing order events to kafka", "topic", cfg.Events.Topic, "brokers", cfg.Events.Brokers)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.Events.Driver)
	}
}

// NewRateLimiter returns a nil limiter when rate limiting is disabled, which
// the middleware treats as pass-through.
func NewRateLimiter(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) middleware.RateLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable, rate limiting will fail open", "addr", cfg.Redis.Addr, "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})
	return ratelimit.NewLimiter(rdb, cfg.RateLimit, clk)
}
