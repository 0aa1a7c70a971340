package app

import (
	"context"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/events"
	"order-service/internal/service/integrations"
	"order-service/internal/transport/kafka"
)

const eventHandleTimeout = 30 * time.Second

// makeIntegrationsKafka adapts the processor to the consumer. Business errors will not heal on
// redelivery and are marked permanent.
func makeIntegrationsKafka(p *integrations.Processor) kafka.HandleFunc {
	return func(ctx context.Context, e events.Event) error {
		ctx, cancel := context.WithTimeout(ctx, eventHandleTimeout)
		defer cancel()

		err := p.Handle(ctx, e)
		if err != nil && apperr.Business(err) {
			return kafka.Permanent(err)
		}
		return err
	}
}
