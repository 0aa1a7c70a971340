package orders

import (
	"context"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/logx"
	"order-service/internal/metrics"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Options tunes the Service.
type Options struct {
	OperationTimeout  time.Duration
	StrictTransitions bool
}

// Deps groups the collaborators of the Service.
type Deps struct {
	Tx        TxRunner
	Reader    Reader
	Drivers   DriverLookup
	Publisher Publisher
	Metrics   *metrics.Orders
	Logger    logx.Logger
}

// Service manages the order lifecycle.
type Service struct {
	tx               TxRunner
	reader           Reader
	drivers          DriverLookup
	publisher        Publisher
	metrics          *metrics.Orders
	logger           logx.Logger
	operationTimeout time.Duration
	strict           bool
	now              func() time.Time
}

// NewService creates a new orders Service.
func NewService(d Deps, opts Options) *Service {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = 3 * time.Second
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop()
	}
	if d.Logger == nil {
		d.Logger = logx.Nop()
	}
	return &Service{
		tx:               d.Tx,
		reader:           d.Reader,
		drivers:          d.Drivers,
		publisher:        d.Publisher,
		metrics:          d.Metrics,
		logger:           d.Logger,
		operationTimeout: opts.OperationTimeout,
		strict:           opts.StrictTransitions,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// publish runs after commit; failures are logged and counted only.
func (s *Service) publish(ctx context.Context, typ domain.EventType, orderID, driverID int64, actor domain.Actor, at time.Time, payload any) {
	e, err := events.New(typ, orderID, at, payload)
	if err == nil {
		pctx, cancel := events.AfterCommit(ctx)
		err = s.publisher.Publish(pctx, e.WithDriver(driverID).WithActor(actor.UserID))
		cancel()
	}
	if err != nil {
		s.metrics.PublishFailure(string(typ))
		s.logger.Error("event publish failed",
			logx.String("event", "event_publish_failed"),
			logx.String("event_type", string(typ)),
			logx.OrderID(orderID),
			logx.Err(err),
		)
	}
}

// visible reports whether actor may read the order. Operators see every order, clients their own,
// drivers the ones currently assigned to them.
func (s *Service) visible(ctx context.Context, actor domain.Actor, o *domain.Order) error {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleDispatcher:
		return nil
	case domain.RoleClient:
		if o.ClientID == actor.UserID {
			return nil
		}
	case domain.RoleDriver:
		d, err := s.drivers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		a, err := s.reader.ActiveAssignment(ctx, o.ID)
		if err != nil {
			return err
		}
		if d != nil && a != nil && a.DriverID == d.ID {
			return nil
		}
	}
	return apperr.Forbidden("access to this order is denied")
}
