package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/IBM/sarama"

	"order-service/internal/events"
	"order-service/internal/logx"
)

var newAsyncProducer = sarama.NewAsyncProducer

// ErrBufferFull is returned when the producer's input buffer is saturated, typically while the
// brokers are unreachable. Publish never waits for room.
var ErrBufferFull = errors.New("kafka producer buffer full")

// Publisher hands events to a Sarama async producer. Delivery errors surface asynchronously and
// are only logged.
type Publisher struct {
	producer sarama.AsyncProducer
	topic    string
	logger   logx.Logger
	onError  func(events.Event)
	wg       sync.WaitGroup
}

// NewPublisher creates a Kafka event publisher. It returns nil when Kafka is not configured.
func NewPublisher(logger logx.Logger, brokers []string, topic string, onError func(events.Event)) (*Publisher, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Errors = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	p, err := newAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return newPublisher(p, topic, logger, onError), nil
}

func newPublisher(p sarama.AsyncProducer, topic string, logger logx.Logger, onError func(events.Event)) *Publisher {
	if logger == nil {
		logger = logx.Nop()
	}
	pub := &Publisher{producer: p, topic: topic, logger: logger, onError: onError}
	pub.wg.Add(1)
	go pub.drainErrors()
	return pub
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	if p == nil {
		return errors.New("kafka publisher is not configured")
	}
	b, err := json.Marshal(FromDomain(e))
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic:    p.topic,
		Key:      sarama.StringEncoder(e.Key()),
		Value:    sarama.ByteEncoder(b),
		Metadata: e,
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.producer.Input() <- msg:
		return nil
	default:
		return fmt.Errorf("publish %s: %w", e.Type, ErrBufferFull)
	}
}

func (p *Publisher) drainErrors() {
	defer p.wg.Done()
	for perr := range p.producer.Errors() {
		var e events.Event
		if perr.Msg != nil {
			e, _ = perr.Msg.Metadata.(events.Event)
		}
		p.logger.Error("kafka delivery failed",
			logx.String("event", "event_publish_failed"),
			logx.String("event_type", string(e.Type)),
			logx.OrderID(e.OrderID),
			logx.Err(perr.Err),
		)
		if p.onError != nil {
			p.onError(e)
		}
	}
}

// Close flushes buffered messages and stops the producer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	err := p.producer.Close()
	p.wg.Wait()
	return err
}
