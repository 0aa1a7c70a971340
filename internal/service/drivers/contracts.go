package drivers

import (
	"context"

	"order-service/internal/domain"
	"order-service/internal/ports/ordertx"
)

// driverRepository defines storage operations required by the business layer.
type driverRepository interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Driver, error)
	List(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error)
	Create(ctx context.Context, d *domain.Driver) (int64, error)
}

// txRunner runs fn inside one order transaction; status changes lock the driver row.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error
}
