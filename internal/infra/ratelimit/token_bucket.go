// Package ratelimit implements a Redis token bucket shared by all API instances.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

var errUnexpectedReply = errs.New("unexpected rate limit script reply")

var bucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter struct {
	rdb   redis.Scripter
	cfg   config.RateLimitConfig
	clock clock.Clock
}

func NewLimiter(rdb redis.Scripter, cfg config.RateLimitConfig, clk clock.Clock) *Limiter {
	return &Limiter{rdb: rdb, cfg: cfg, clock: clk}
}

// Allow takes one token from the bucket named by parts. When Redis cannot be
// reached the request is allowed and the error is returned for logging.
func (l *Limiter) Allow(ctx context.Context, parts ...string) (Decision, error) {
	key := strings.Join(append([]string{l.cfg.Prefix}, parts...), ":")
	args := []any{
		l.clock.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.cfg.TTL / time.Second),
	}

	open := Decision{Allowed: true, Limit: l.cfg.Capacity}

	vals, err := bucketScript.Run(ctx, l.rdb, []string{key}, args...).Result()
	if err != nil {
		return open, errs.Wrap(err, "run rate limit script")
	}
	arr, ok := vals.([]any)
	if !ok || len(arr) != 3 {
		return open, errs.Wrap(errUnexpectedReply, fmt.Sprintf("%#v", vals))
	}

	return Decision{
		Allowed:    asInt64(arr[0]) == 1,
		Limit:      l.cfg.Capacity,
		Remaining:  asInt64(arr[1]),
		RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
