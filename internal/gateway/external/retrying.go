package external

import (
	"context"
	"errors"
	"time"

	"order-service/internal/domain"
	"order-service/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig describes the behaviour of Retrying.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Timeout bounds every single attempt.
	Timeout time.Duration
}

// Retrying wraps the three system clients with a per-attempt timeout and exponential backoff on
// transient failures.
type Retrying struct {
	wms     WMS
	ros     ROS
	cms     CMS
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	wait    func(context.Context, time.Duration) bool
}

// NewRetrying returns nil when any client is missing.
func NewRetrying(wms WMS, ros ROS, cms CMS, logger logx.Logger, retries counter, cfg RetryConfig) *Retrying {
	if wms == nil || ros == nil || cms == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Retrying{wms: wms, ros: ros, cms: cms, logger: logger, retries: retries, cfg: cfg, wait: sleepWithContext}
}

// ValidateOrder implements WMS.
func (g *Retrying) ValidateOrder(ctx context.Context, o domain.Order) (Receipt, error) {
	return g.do(ctx, domain.SystemWMS, "ValidateOrder", func(ctx context.Context) (Receipt, error) {
		return g.wms.ValidateOrder(ctx, o)
	})
}

// OptimizeRoute implements ROS.
func (g *Retrying) OptimizeRoute(ctx context.Context, o domain.Order) (Receipt, error) {
	return g.do(ctx, domain.SystemROS, "OptimizeRoute", func(ctx context.Context) (Receipt, error) {
		return g.ros.OptimizeRoute(ctx, o)
	})
}

// CreateIntake implements CMS.
func (g *Retrying) CreateIntake(ctx context.Context, o domain.Order) (Receipt, error) {
	return g.do(ctx, domain.SystemCMS, "CreateIntake", func(ctx context.Context) (Receipt, error) {
		return g.cms.CreateIntake(ctx, o)
	})
}

func (g *Retrying) do(ctx context.Context, system domain.ExternalSystem, method string, call func(context.Context) (Receipt, error)) (Receipt, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		r, err := g.attempt(ctx, call)
		if err == nil {
			return r, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("external system retry",
			logx.String("system", string(system)),
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !g.wait(ctx, delay) {
			break
		}
	}
	return Receipt{}, lastErr
}

func (g *Retrying) attempt(ctx context.Context, call func(context.Context) (Receipt, error)) (Receipt, error) {
	if g.cfg.Timeout <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	return call(ctx)
}

// isRetryable reports transient failures: explicit unavailability or an attempt timeout.
func isRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// backoff computes the retry delay.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
