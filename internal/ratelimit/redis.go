package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"certiva/internal/platform/redis"
)

// allowScript increments the window counter and stamps the expiry on first
// touch, atomically.
var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter is a fixed-window limiter shared across instances.
type RedisLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, now: time.Now}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1000
	}

	result, err := allowScript.Run(ctx, r.client, []string{"ratelimit:" + key}, windowMillis).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("run rate limit script: %w", err)
	}
	values, ok := result.([]any)
	if !ok || len(values) < 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result %T", result)
	}
	current, ok := values[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected rate limit counter %T", values[0])
	}
	ttlMillis, _ := values[1].(int64)

	resetAt := r.now()
	if ttlMillis > 0 {
		resetAt = resetAt.Add(time.Duration(ttlMillis) * time.Millisecond)
	}
	remaining := limit - int(current)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   current <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
