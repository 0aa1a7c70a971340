//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=assignment_test

package assignment

import (
	"context"

	"order-service/internal/events"
	"order-service/internal/ports/ordertx"
)

// TxRunner runs fn inside one order transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
}

// Publisher hands committed changes to the event bus.
type Publisher interface {
	events.Publisher
}
