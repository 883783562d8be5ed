package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "notekeeper:login:"

// counter is the part of the redis client the limiter uses.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// RedisLimiter is a fixed-window counter (INCR, then EXPIRE on the first hit).
// Redis failures allow the attempt.
type RedisLimiter struct {
	client  counter
	log     logging.Logger
	limit   int
	window  time.Duration
	timeout time.Duration
}

// NewRedisLimiter connects to addr and verifies it answers PING.
func NewRedisLimiter(ctx context.Context, addr string, limit int, window time.Duration, log logging.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return newRedisLimiter(client, limit, window, log), nil
}

func newRedisLimiter(c counter, limit int, window time.Duration, log logging.Logger) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client:  c,
		log:     log.With("module", "ratelimit"),
		limit:   limit,
		window:  window,
		timeout: 250 * time.Millisecond,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l.limit <= 0 {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	redisKey := keyPrefix + key
	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.log.Error(ctx, "redis rate limiter error", "op", "incr", "error", err)
		return true
	}
	if n == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.log.Error(ctx, "redis rate limiter error", "op", "expire", "error", err)
		}
	}

	return n <= int64(l.limit)
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
