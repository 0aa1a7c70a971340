package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request keyed by actor or address may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// NopLimiter admits everything; used when rate limiting is disabled.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) bool { return true }

// Clock is injected so window and refill math can be driven from tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
