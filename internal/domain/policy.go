package domain

var driverSettable = map[OrderStatus]struct{}{
	OrderPickedUp:       {},
	OrderInTransit:      {},
	OrderOutForDelivery: {},
	OrderDelivered:      {},
	OrderFailed:         {},
}

var clientCancellable = map[OrderStatus]struct{}{
	OrderPending:         {},
	OrderProcessing:      {},
	OrderPickupScheduled: {},
	OrderFailed:          {},
}

// CanUpdateStatus reports whether role may move an order from current to requested.
// It depends on nothing but its arguments.
func CanUpdateStatus(role Role, current, requested OrderStatus) bool {
	switch role {
	case RoleAdmin, RoleDispatcher:
		return true
	case RoleDriver:
		_, ok := driverSettable[requested]
		return ok
	case RoleClient:
		if requested != OrderCancelled {
			return false
		}
		_, ok := clientCancellable[current]
		return ok
	default:
		return false
	}
}
