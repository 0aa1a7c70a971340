package kafka

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"order-service/internal/domain"
	"order-service/internal/events"
)

// EventDTO is the wire form of events.Event on the order events topic.
type EventDTO struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	OrderID    int64           `json:"order_id,omitempty"`
	DriverID   int64           `json:"driver_id,omitempty"`
	ActorID    int64           `json:"actor_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

var (
	errEmptyType    = errors.New("empty event type")
	errEmptySubject = errors.New("event has neither order_id nor driver_id")
)

// FromDomain converts an event to its wire form.
func FromDomain(e events.Event) EventDTO {
	return EventDTO{
		ID:         e.ID,
		Type:       string(e.Type),
		OccurredAt: e.OccurredAt,
		OrderID:    e.OrderID,
		DriverID:   e.DriverID,
		ActorID:    e.ActorID,
		Payload:    e.Payload,
	}
}

// ToDomain validates dto and converts it to an event.
func ToDomain(dto EventDTO) (events.Event, error) {
	typ := strings.ToUpper(strings.TrimSpace(dto.Type))
	if typ == "" {
		return events.Event{}, errEmptyType
	}
	if dto.OrderID <= 0 && dto.DriverID <= 0 {
		return events.Event{}, errEmptySubject
	}
	return events.Event{
		ID:         strings.TrimSpace(dto.ID),
		Type:       domain.EventType(typ),
		OccurredAt: dto.OccurredAt,
		OrderID:    dto.OrderID,
		DriverID:   dto.DriverID,
		ActorID:    dto.ActorID,
		Payload:    dto.Payload,
	}, nil
}
