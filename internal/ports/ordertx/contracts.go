package ordertx

import (
	"context"
	"time"

	"order-service/internal/domain"
)

// Repository is the set of row-locking reads and writes available inside one order transaction.
// Getters return (nil, nil) when the row does not exist.
type Repository interface {
	InsertOrder(ctx context.Context, o *domain.Order) error
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	UpdateOrderPriority(ctx context.Context, id int64, p domain.Priority) error

	GetDriverForUpdate(ctx context.Context, id int64) (*domain.Driver, error)
	UpdateDriverStatus(ctx context.Context, id int64, status domain.DriverStatus) error

	GetActiveAssignmentForUpdate(ctx context.Context, orderID int64) (*domain.Assignment, error)
	InsertAssignment(ctx context.Context, a *domain.Assignment) error
	CancelAssignment(ctx context.Context, id int64, adminNote string) error
	MarkAssignmentAccepted(ctx context.Context, id int64, at time.Time) error
	MarkAssignmentStarted(ctx context.Context, id int64, at time.Time) error
	MarkAssignmentCompleted(ctx context.Context, id int64, at time.Time) error

	AppendHistory(ctx context.Context, h *domain.StatusHistory) error
	UpsertProofOfDelivery(ctx context.Context, p *domain.ProofOfDelivery) error

	// Savepoint runs fn in a nested transaction; an error rolls back only fn's writes.
	Savepoint(ctx context.Context, fn func(tx Repository) error) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
