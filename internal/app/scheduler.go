package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"order-service/internal/logx"
)

const retryJobTimeout = 2 * time.Minute

type retryFailedFunc func(ctx context.Context) (int, error)

// newRetryScheduler runs retry on spec. An empty spec disables the job and yields nil.
func newRetryScheduler(ctx context.Context, spec string, retry retryFailedFunc, logger logx.Logger) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		jobCtx, cancel := context.WithTimeout(ctx, retryJobTimeout)
		defer cancel()

		n, err := retry(jobCtx)
		if err != nil {
			logger.Error("integration retry job failed",
				logx.String("event", "integration_retry_failed"),
				logx.Int("recovered", n),
				logx.Err(err),
			)
			return
		}
		logger.Debug("integration retry job done", logx.Int("recovered", n))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid retry schedule %q: %w", spec, err)
	}
	return c, nil
}
