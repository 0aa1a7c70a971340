//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=integrations_test

package integrations

import (
	"context"

	"order-service/internal/domain"
	"order-service/internal/gateway/external"
)

// Repository stores per-order sync state.
type Repository interface {
	Record(ctx context.Context, s domain.IntegrationSync) error
	ListByOrder(ctx context.Context, orderID int64) ([]domain.IntegrationSync, error)
	ListFailed(ctx context.Context, maxAttempts, limit int) ([]domain.IntegrationSync, error)
}

// OrderReader loads the order being synced.
type OrderReader interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
}

// Systems bundles the external clients.
type Systems interface {
	external.WMS
	external.ROS
	external.CMS
}
