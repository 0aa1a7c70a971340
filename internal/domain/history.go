package domain

import "time"

// StatusHistory is one row of the append-only order audit trail.
type StatusHistory struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	ActorID   *int64
	ActorType ActorType
	Notes     string
	CreatedAt time.Time
}

// HistoryEntry builds the audit row for a change made by a.
func HistoryEntry(orderID int64, status OrderStatus, a Actor, notes string, at time.Time) *StatusHistory {
	var actorID *int64
	if a.UserID != 0 {
		id := a.UserID
		actorID = &id
	}
	actorType := a.Type()
	if actorType == "" {
		actorType = ActorSystem
	}
	return &StatusHistory{
		OrderID:   orderID,
		Status:    status,
		ActorID:   actorID,
		ActorType: actorType,
		Notes:     notes,
		CreatedAt: at,
	}
}
