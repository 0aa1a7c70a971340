package handlers

import (
	"context"
	"net/http"

	"order-service/internal/domain"
	"order-service/internal/service/orders"
)

type orderUsecase interface {
	Create(ctx context.Context, actor domain.Actor, in orders.CreateInput) (domain.Order, error)
	Get(ctx context.Context, actor domain.Actor, id int64) (domain.Order, error)
	List(ctx context.Context, actor domain.Actor, f domain.OrderFilter) ([]domain.Order, error)
	History(ctx context.Context, actor domain.Actor, id int64) ([]domain.StatusHistory, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, change domain.StatusChange) (domain.StatusChangeResult, error)
}

type assignmentUsecase interface {
	Assign(ctx context.Context, actor domain.Actor, req domain.AssignRequest) (domain.AssignResult, error)
	BulkAssign(ctx context.Context, actor domain.Actor, items []domain.AssignRequest) (domain.BulkAssignResult, error)
	EmergencyReassign(ctx context.Context, actor domain.Actor, req domain.EmergencyReassignRequest) (domain.EmergencyReassignResult, error)
	Accept(ctx context.Context, actor domain.Actor, orderID int64) (domain.AcceptResult, error)
	CompleteDelivery(ctx context.Context, actor domain.Actor, pod domain.ProofOfDelivery) (domain.CompletionResult, error)
}

type driverUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
	ByUser(ctx context.Context, userID int64) (*domain.Driver, error)
	List(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error)
	Create(ctx context.Context, actor domain.Actor, d *domain.Driver) (int64, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, change domain.DriverStatusChange) (*domain.Driver, error)
}

type integrationUsecase interface {
	Retry(ctx context.Context, actor domain.Actor, orderID int64) ([]domain.IntegrationSync, error)
}

// driverSocket attaches an authenticated driver to the push channel.
type driverSocket interface {
	ServeDriver(w http.ResponseWriter, r *http.Request, driverID int64)
}
