package domain

// EventType names an order or driver event published on the bus.
type EventType string

// Published event types.
const (
	EventOrderCreated             EventType = "ORDER_CREATED"
	EventOrderStatusUpdated       EventType = "ORDER_STATUS_UPDATED"
	EventOrderAssignedToDriver    EventType = "ORDER_ASSIGNED_TO_DRIVER"
	EventOrderEmergencyReassigned EventType = "ORDER_EMERGENCY_REASSIGNED"
	EventAssignmentAccepted       EventType = "ASSIGNMENT_ACCEPTED"
	EventOrderDelivered           EventType = "ORDER_DELIVERED"
	EventDriverStatusUpdated      EventType = "DRIVER_STATUS_UPDATED"
)
