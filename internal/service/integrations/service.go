package integrations

import (
	"context"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/gateway/external"
	"order-service/internal/logx"
)

const defaultRetryBatch = 100

// Options tunes the integration service.
type Options struct {
	// MaxAttempts stops the scheduled retry of a system after this many recorded attempts.
	MaxAttempts int
	RetryBatch  int
}

// Service syncs orders to the external systems. Failures never fail the order; they are recorded
// and picked up again by Retry and RetryFailed.
type Service struct {
	repo    Repository
	orders  OrderReader
	systems Systems
	logger  logx.Logger
	opts    Options
}

// NewService creates an integration Service.
func NewService(repo Repository, orders OrderReader, systems Systems, opts Options, logger logx.Logger) *Service {
	if logger == nil {
		logger = logx.Nop()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.RetryBatch <= 0 {
		opts.RetryBatch = defaultRetryBatch
	}
	return &Service{repo: repo, orders: orders, systems: systems, logger: logger, opts: opts}
}

// Sync pushes the order to every external system and returns the recorded states.
func (s *Service) Sync(ctx context.Context, orderID int64) ([]domain.IntegrationSync, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.syncSystems(ctx, *o, domain.ExternalSystems())
}

// Retry re-runs the failed and never-attempted systems of one order on behalf of an operator.
func (s *Service) Retry(ctx context.Context, actor domain.Actor, orderID int64) ([]domain.IntegrationSync, error) {
	if !actor.Role.Operator() {
		return nil, apperr.Forbidden("insufficient permissions to retry integrations")
	}
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	done := make(map[domain.ExternalSystem]bool, len(current))
	for _, c := range current {
		done[c.System] = c.Status == domain.SyncSucceeded
	}
	var pending []domain.ExternalSystem
	for _, sys := range domain.ExternalSystems() {
		if !done[sys] {
			pending = append(pending, sys)
		}
	}
	if len(pending) == 0 {
		return current, nil
	}
	if _, err := s.syncSystems(ctx, *o, pending); err != nil {
		return nil, err
	}
	return s.repo.ListByOrder(ctx, orderID)
}

// RetryFailed re-runs failed syncs that still have attempts left and reports how many recovered.
func (s *Service) RetryFailed(ctx context.Context) (int, error) {
	failed, err := s.repo.ListFailed(ctx, s.opts.MaxAttempts, s.opts.RetryBatch)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for _, f := range failed {
		if ctx.Err() != nil {
			return recovered, ctx.Err()
		}
		o, err := s.orders.Get(ctx, f.OrderID)
		if err != nil {
			return recovered, err
		}
		if o == nil {
			continue
		}
		res, err := s.syncSystems(ctx, *o, []domain.ExternalSystem{f.System})
		if err != nil {
			return recovered, err
		}
		if len(res) == 1 && res[0].Status == domain.SyncSucceeded {
			recovered++
		}
	}
	s.logger.Info("integration retry finished",
		logx.String("event", "integration_retry_finished"),
		logx.Int("candidates", len(failed)),
		logx.Int("recovered", recovered),
	)
	return recovered, nil
}

func (s *Service) load(ctx context.Context, orderID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, apperr.Invalid("order id must be positive")
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("order not found")
	}
	return o, nil
}

// syncSystems calls each system in turn. Only storage errors are returned.
func (s *Service) syncSystems(ctx context.Context, o domain.Order, systems []domain.ExternalSystem) ([]domain.IntegrationSync, error) {
	out := make([]domain.IntegrationSync, 0, len(systems))
	for _, sys := range systems {
		r, callErr := s.call(ctx, sys, o)
		rec := domain.IntegrationSync{
			OrderID:     o.ID,
			System:      sys,
			Status:      domain.SyncSucceeded,
			ExternalRef: r.Reference,
			UpdatedAt:   time.Now().UTC(),
		}
		if callErr != nil {
			rec.Status = domain.SyncFailed
			rec.LastError = callErr.Error()
			s.logger.Warn("integration sync failed",
				logx.String("event", "integration_sync_failed"),
				logx.OrderID(o.ID),
				logx.String("system", string(sys)),
				logx.Err(callErr),
			)
		}
		if err := s.repo.Record(context.WithoutCancel(ctx), rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Service) call(ctx context.Context, sys domain.ExternalSystem, o domain.Order) (external.Receipt, error) {
	switch sys {
	case domain.SystemWMS:
		return s.systems.ValidateOrder(ctx, o)
	case domain.SystemROS:
		return s.systems.OptimizeRoute(ctx, o)
	case domain.SystemCMS:
		return s.systems.CreateIntake(ctx, o)
	default:
		return external.Receipt{}, apperr.Invalid("unknown external system: %s", sys)
	}
}
