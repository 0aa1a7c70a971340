package integrations

import (
	"context"
	"errors"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/logx"
)

// Processor reacts to order events consumed by the worker.
type Processor struct {
	svc     *Service
	logger  logx.Logger
	factory *actionFactory
}

// NewProcessor creates a Processor backed by svc.
func NewProcessor(svc *Service, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{svc: svc, logger: logger}
	p.factory = newActionFactory(p.onCreated, p.onReassigned)
	return p
}

// Handle processes a single event. Unknown event types are ignored.
func (p *Processor) Handle(ctx context.Context, e events.Event) error {
	if p.factory == nil {
		return nil
	}
	fn, ok := p.factory.get(e.Type)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onCreated(ctx context.Context, e events.Event) error {
	_, err := p.svc.Sync(ctx, e.OrderID)
	return p.tolerate(e, err)
}

func (p *Processor) onReassigned(ctx context.Context, e events.Event) error {
	o, err := p.svc.load(ctx, e.OrderID)
	if err != nil {
		return p.tolerate(e, err)
	}
	_, err = p.svc.syncSystems(ctx, *o, []domain.ExternalSystem{domain.SystemROS})
	return err
}

// tolerate drops events about orders that no longer exist.
func (p *Processor) tolerate(e events.Event, err error) error {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalid) {
		p.logger.Warn("event skipped",
			logx.String("event_type", string(e.Type)),
			logx.OrderID(e.OrderID),
			logx.Err(err),
		)
		return nil
	}
	return err
}
