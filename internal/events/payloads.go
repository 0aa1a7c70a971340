package events

import (
	"time"

	"order-service/internal/domain"
)

// OrderCreated is the payload of ORDER_CREATED.
type OrderCreated struct {
	ClientID int64           `json:"client_id"`
	Priority domain.Priority `json:"priority"`
	Pickup   domain.Address  `json:"pickup_address"`
	Delivery domain.Address  `json:"delivery_address"`
}

// StatusUpdated is the payload of ORDER_STATUS_UPDATED and ORDER_DELIVERED.
type StatusUpdated struct {
	PreviousStatus domain.OrderStatus `json:"previous_status"`
	Status         domain.OrderStatus `json:"status"`
	Notes          string             `json:"notes,omitempty"`
}

// Assigned is the payload of ORDER_ASSIGNED_TO_DRIVER and ASSIGNMENT_ACCEPTED.
type Assigned struct {
	AssignmentID      int64      `json:"assignment_id"`
	DriverID          int64      `json:"driver_id"`
	EstimatedPickup   *time.Time `json:"estimated_pickup_time,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery_time,omitempty"`
}

// Reassigned is the payload of ORDER_EMERGENCY_REASSIGNED.
type Reassigned struct {
	AssignmentID     int64           `json:"assignment_id"`
	PreviousDriverID *int64          `json:"previous_driver_id,omitempty"`
	NewDriverID      int64           `json:"new_driver_id"`
	Reason           string          `json:"reason"`
	Priority         domain.Priority `json:"priority"`
}

// DriverStatusUpdated is the payload of DRIVER_STATUS_UPDATED.
type DriverStatusUpdated struct {
	PreviousStatus domain.DriverStatus `json:"previous_status"`
	Status         domain.DriverStatus `json:"status"`
}
