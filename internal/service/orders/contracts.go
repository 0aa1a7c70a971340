//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=orders_test

package orders

import (
	"context"

	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/ports/ordertx"
)

// TxRunner runs fn inside one order transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
}

// Reader is the non-locking read side of orders.
type Reader interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error)
	History(ctx context.Context, orderID int64) ([]domain.StatusHistory, error)
	ActiveAssignment(ctx context.Context, orderID int64) (*domain.Assignment, error)
}

// DriverLookup resolves the driver profile of an authenticated driver.
type DriverLookup interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Driver, error)
}

// Publisher hands committed changes to the event bus.
type Publisher interface {
	events.Publisher
}
