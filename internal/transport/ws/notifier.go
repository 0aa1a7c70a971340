package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-service/internal/domain"
	"order-service/internal/events"
)

// Notification is the message pushed to a driver.
type Notification struct {
	Type       domain.EventType `json:"type"`
	OrderID    int64            `json:"order_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Data       json.RawMessage  `json:"data,omitempty"`
}

// Notifier is an events.Publisher that forwards driver-facing events to the hub. Drivers that
// are offline miss the push; the REST surface stays the source of truth.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a Notifier.
func NewNotifier(hub *Hub) *Notifier { return &Notifier{hub: hub} }

// Publish implements events.Publisher.
func (n *Notifier) Publish(_ context.Context, e events.Event) error {
	var targets []int64
	switch e.Type {
	case domain.EventOrderAssignedToDriver, domain.EventOrderStatusUpdated:
		targets = append(targets, e.DriverID)
	case domain.EventOrderEmergencyReassigned:
		targets = append(targets, e.DriverID)
		var p events.Reassigned
		if err := e.Decode(&p); err != nil {
			return fmt.Errorf("decode %s: %w", e.Type, err)
		}
		if p.PreviousDriverID != nil {
			targets = append(targets, *p.PreviousDriverID)
		}
	default:
		return nil
	}

	msg, err := json.Marshal(Notification{Type: e.Type, OrderID: e.OrderID, OccurredAt: e.OccurredAt, Data: e.Payload})
	if err != nil {
		return err
	}
	for _, id := range targets {
		if id > 0 {
			n.hub.SendToDriver(id, msg)
		}
	}
	return nil
}
