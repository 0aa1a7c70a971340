package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"order-service/internal/config"
	"order-service/internal/http/middleware"
	"order-service/internal/http/middleware/ratelimit"
	"order-service/internal/logx"
)

func registerRateLimit(container *dig.Container) error {
	return provideAll(container,
		newRateLimitClock,
		newRedisClient,
		newRateLimiter,
		newRateLimitMiddleware,
	)
}

// newRedisClient returns nil unless the redis backend is selected.
func newRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Backend != config.RateLimitRedis {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func newRateLimiter(cfg *config.Config, clock ratelimit.Clock, client *redis.Client, logger logx.Logger) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.NopLimiter{}
	}
	if rl.Backend == config.RateLimitRedis && client != nil {
		return ratelimit.NewRedisLimiter(client, clock, ratelimit.RedisConfig{
			Limit:  rl.Burst,
			Window: redisWindow(rl),
			Prefix: "order-service:ratelimit",
		}, logger)
	}
	return ratelimit.NewTokenBucketLimiter(clock, ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	})
}

// redisWindow is the time a full burst takes to refill at rl.Rate.
func redisWindow(rl config.RateLimit) time.Duration {
	if rl.Rate <= 0 || rl.Burst <= 0 {
		return time.Second
	}
	return time.Duration(float64(rl.Burst) / rl.Rate * float64(time.Second))
}

func newRateLimitClock() ratelimit.Clock {
	return ratelimit.RealClock{}
}

type rateLimitIn struct {
	dig.In
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter, middleware.ActorKey(ratelimit.IPKey))
}
