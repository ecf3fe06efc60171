package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/infra/ratelimit"
	"storefront-core/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

var errRateLimited = errs.Define("too many requests, try again later", errs.ErrTooManyAttempts)

type RateLimiter interface {
	Allow(ctx context.Context, parts ...string) (ratelimit.Decision, error)
}

// RateLimit buckets requests by scope and caller. It keys on the actor when
// one is resolved and on the client IP otherwise. A nil limiter disables it.
func RateLimit(limiter RateLimiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		subject := "ip:" + c.ClientIP()
		if actor, ok := GetActor(c); ok {
			subject = "user:" + actor.ID.String()
		}

		decision, err := limiter.Allow(c.Request.Context(), scope, subject)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request",
				"scope", scope,
				"error", err.Error())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(decision.Remaining, 0), 10))

		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
			httperr.AbortWithClassified(c, errRateLimited)
			return
		}
		c.Next()
	}
}
