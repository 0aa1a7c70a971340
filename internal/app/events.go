package app

import (
	"fmt"

	"go.uber.org/dig"

	"order-service/internal/config"
	"order-service/internal/events"
	"order-service/internal/logx"
	"order-service/internal/metrics"
	"order-service/internal/transport/amqp"
	"order-service/internal/transport/kafka"
	"order-service/internal/transport/ws"
)

var (
	newKafkaPublisher = kafka.NewPublisher
	dialAMQP          = amqp.Dial
)

// eventBus is the configured outbound broker.
type eventBus struct {
	publisher events.Publisher
	close     func() error
}

// Close releases the broker connection.
func (b *eventBus) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

func registerEvents(container *dig.Container) error {
	return provideAll(container, newEventBus)
}

func newEventBus(cfg *config.Config, logger logx.Logger, m *metrics.Orders) (*eventBus, error) {
	switch cfg.EventBus {
	case config.EventBusKafka:
		p, err := newKafkaPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic, func(e events.Event) {
			m.PublishFailure(string(e.Type))
		})
		if err != nil {
			return nil, err
		}
		if p == nil {
			logger.Warn("kafka not configured, events are dropped")
			return &eventBus{publisher: events.Nop()}, nil
		}
		logger.Info("event bus ready", logx.String("backend", "kafka"), logx.String("topic", cfg.Kafka.Topic))
		return &eventBus{publisher: p, close: p.Close}, nil
	case config.EventBusAMQP:
		p, err := dialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			return nil, fmt.Errorf("amqp: %w", err)
		}
		logger.Info("event bus ready", logx.String("backend", "amqp"), logx.String("exchange", cfg.AMQP.Exchange))
		return &eventBus{publisher: p, close: p.Close}, nil
	default:
		logger.Info("event bus disabled")
		return &eventBus{publisher: events.Nop()}, nil
	}
}

// newPublisher fans committed events out to the broker and to connected drivers.
func newPublisher(bus *eventBus, hub *ws.Hub) events.Publisher {
	return events.Multi{bus.publisher, ws.NewNotifier(hub)}
}
