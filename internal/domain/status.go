package domain

type (
	// OrderStatus is a stage of the order lifecycle.
	OrderStatus string
	// Priority is the dispatch priority of an order.
	Priority string
)

// Order lifecycle statuses.
const (
	OrderPending         OrderStatus = "pending"
	OrderProcessing      OrderStatus = "processing"
	OrderPickupScheduled OrderStatus = "pickup_scheduled"
	OrderPickedUp        OrderStatus = "picked_up"
	OrderInTransit       OrderStatus = "in_transit"
	OrderOutForDelivery  OrderStatus = "out_for_delivery"
	OrderDelivered       OrderStatus = "delivered"
	OrderFailed          OrderStatus = "failed"
	OrderCancelled       OrderStatus = "cancelled"
	OrderReturned        OrderStatus = "returned"
)

// Order priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderProcessing, OrderPickupScheduled, OrderPickedUp, OrderInTransit,
	OrderOutForDelivery, OrderDelivered, OrderFailed, OrderCancelled, OrderReturned,
}

var allowedPriorities = [...]Priority{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent,
}

// Valid checks if the OrderStatus is one of the lifecycle statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further work happens on an order in this status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderDelivered, OrderCancelled, OrderReturned:
		return true
	default:
		return false
	}
}

// Assignable reports whether a driver may be bound to an order in this status.
func (s OrderStatus) Assignable() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderPickupScheduled:
		return true
	default:
		return false
	}
}

// Valid checks if the Priority is known.
func (p Priority) Valid() bool {
	for _, v := range allowedPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// transitions is the adjacency table used when strict transitions are on.
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:         {OrderProcessing, OrderPickupScheduled, OrderCancelled, OrderFailed},
	OrderProcessing:      {OrderPickupScheduled, OrderCancelled, OrderFailed},
	OrderPickupScheduled: {OrderPickedUp, OrderProcessing, OrderCancelled, OrderFailed},
	OrderPickedUp:        {OrderInTransit, OrderFailed, OrderReturned},
	OrderInTransit:       {OrderOutForDelivery, OrderDelivered, OrderFailed, OrderReturned},
	OrderOutForDelivery:  {OrderDelivered, OrderFailed, OrderReturned},
	OrderFailed:          {OrderPending, OrderProcessing, OrderPickupScheduled, OrderCancelled, OrderReturned},
	OrderDelivered:       {OrderReturned},
}

// CanTransition reports whether from → to is an edge of the lifecycle.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
