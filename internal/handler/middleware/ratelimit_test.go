package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/infra/ratelimit"
	"storefront-core/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
	keys     [][]string
}

func (l *stubLimiter) Allow(_ context.Context, parts ...string) (ratelimit.Decision, error) {
	l.keys = append(l.keys, parts)
	return l.decision, l.err
}

func newLimitedEngine(limiter middleware.RateLimiter, actor *user.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine.POST("/limited",
		func(c *gin.Context) {
			if actor != nil {
				middleware.SetActor(c, actor)
			}
			c.Next()
		},
		middleware.RateLimit(limiter, "rotation", logger),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	return engine
}

func TestRateLimit(t *testing.T) {
	actor := &user.Actor{ID: uuid.New(), Role: user.RoleUser, IsActive: true}

	t.Run("allowed request carries quota headers", func(t *testing.T) {
		limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: true, Limit: 5, Remaining: 4}}
		rec := httptest.PerformRequest(t, newLimitedEngine(limiter, actor), http.MethodPost, "/limited", nil, "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		httptest.AssertHeaders(t, rec, map[string]string{
			"X-RateLimit-Limit":     "5",
			"X-RateLimit-Remaining": "4",
		})
		require.Len(t, limiter.keys, 1)
		assert.Equal(t, []string{"rotation", "user:" + actor.ID.String()}, limiter.keys[0])
	})

	t.Run("anonymous callers are keyed by ip", func(t *testing.T) {
		limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: true, Limit: 5, Remaining: 4}}
		httptest.PerformRequest(t, newLimitedEngine(limiter, nil), http.MethodPost, "/limited", nil, "")

		require.Len(t, limiter.keys, 1)
		assert.Equal(t, "rotation", limiter.keys[0][0])
		assert.Regexp(t, `^ip:`, limiter.keys[0][1])
	})

	t.Run("exhausted bucket is 429 with Retry-After rounded up", func(t *testing.T) {
		limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: false, Limit: 5, RetryAfter: 1500 * time.Millisecond}}
		rec := httptest.PerformRequest(t, newLimitedEngine(limiter, actor), http.MethodPost, "/limited", nil, "")

		httptest.AssertErrorResponse(t, rec, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS")
		httptest.AssertHeaders(t, rec, map[string]string{
			"Retry-After":           "2",
			"X-RateLimit-Remaining": "0",
		})
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		limiter := &stubLimiter{
			decision: ratelimit.Decision{Allowed: true, Limit: 5},
			err:      errors.New("redis: connection refused"),
		}
		rec := httptest.PerformRequest(t, newLimitedEngine(limiter, actor), http.MethodPost, "/limited", nil, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("nil limiter disables limiting", func(t *testing.T) {
		rec := httptest.PerformRequest(t, newLimitedEngine(nil, actor), http.MethodPost, "/limited", nil, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})
}
