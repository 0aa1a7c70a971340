package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"order-service/internal/logx"
)

// RedisConfig stores RedisLimiter settings.
type RedisConfig struct {
	Limit  int           // requests per window
	Window time.Duration // fixed window length
	Prefix string        // key prefix
}

// counterStore increments the counter of one window and returns the new value.
type counterStore func(ctx context.Context, key string, ttl time.Duration) (int64, error)

// RedisLimiter is a fixed-window limiter shared by every replica through Redis. It fails open
// when Redis is unreachable.
type RedisLimiter struct {
	cfg    RedisConfig
	clock  Clock
	incr   counterStore
	logger logx.Logger
}

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(client redis.UniversalClient, clock Clock, cfg RedisConfig, logger logx.Logger) *RedisLimiter {
	return newRedisLimiter(redisIncr(client), clock, cfg, logger)
}

func newRedisLimiter(incr counterStore, clock Clock, cfg RedisConfig, logger logx.Logger) *RedisLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}
	return &RedisLimiter{cfg: cfg, clock: clock, incr: incr, logger: logger}
}

func redisIncr(client redis.UniversalClient) counterStore {
	return func(ctx context.Context, key string, ttl time.Duration) (int64, error) {
		var incr *redis.IntCmd
		_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			incr = p.Incr(ctx, key)
			p.Expire(ctx, key, ttl)
			return nil
		})
		if err != nil {
			return 0, err
		}
		return incr.Val(), nil
	}
}

// Allow returns true if key is allowed to proceed in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	window := l.clock.Now().UnixNano() / int64(l.cfg.Window)
	k := fmt.Sprintf("%s:%s:%d", l.cfg.Prefix, key, window)

	n, err := l.incr(ctx, k, l.cfg.Window+time.Second)
	if err != nil {
		l.logger.Warn("rate limit store unavailable", logx.String("key", key), logx.Err(err))
		return true
	}
	return n <= int64(l.cfg.Limit)
}
