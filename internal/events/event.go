package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"order-service/internal/domain"
)

// Event is the envelope published to the event bus after a transaction commits.
type Event struct {
	ID         string           `json:"id"`
	Type       domain.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	OrderID    int64            `json:"order_id,omitempty"`
	DriverID   int64            `json:"driver_id,omitempty"`
	ActorID    int64            `json:"actor_id,omitempty"`
	Payload    json.RawMessage  `json:"payload,omitempty"`
}

// New builds an event with a fresh id. payload is JSON-encoded; nil means no payload.
func New(typ domain.EventType, orderID int64, at time.Time, payload any) (Event, error) {
	e := Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: at.UTC(),
		OrderID:    orderID,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s payload: %w", typ, err)
		}
		e.Payload = raw
	}
	return e, nil
}

// WithDriver returns a copy of e addressed to a driver.
func (e Event) WithDriver(driverID int64) Event {
	e.DriverID = driverID
	return e
}

// WithActor returns a copy of e carrying the acting user.
func (e Event) WithActor(userID int64) Event {
	e.ActorID = userID
	return e
}

// Key is the partitioning key: events of one order stay ordered. Driver-only events are keyed by driver.
func (e Event) Key() string {
	if e.OrderID == 0 && e.DriverID != 0 {
		return fmt.Sprintf("driver-%d", e.DriverID)
	}
	return fmt.Sprintf("order-%d", e.OrderID)
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return errors.New("event has no payload")
	}
	return json.Unmarshal(e.Payload, v)
}

// PublishTimeout bounds a single post-commit publish.
const PublishTimeout = 2 * time.Second

// AfterCommit derives the context for publishing once a request's transaction has committed:
// it outlives the request's cancellation but still expires after PublishTimeout.
func AfterCommit(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
}

// Publisher delivers events on a best-effort basis.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type nopPublisher struct{}

// Nop returns a Publisher that drops every event.
func Nop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
