package app

import (
	"go.uber.org/dig"

	"order-service/internal/config"
	"order-service/internal/events"
	"order-service/internal/logx"
	"order-service/internal/metrics"
	"order-service/internal/repository"
	"order-service/internal/service/assignment"
	"order-service/internal/service/drivers"
	"order-service/internal/service/orders"
	"order-service/internal/transport/ws"
)

func registerServices(container *dig.Container) error {
	return provideAll(container,
		ws.NewHub,
		newPublisher,
		newOrderService,
		newAssignmentService,
		newDriverService,
	)
}

type serviceIn struct {
	dig.In
	Config    *config.Config
	Logger    logx.Logger
	Metrics   *metrics.Orders
	Publisher events.Publisher
	Tx        *repository.TxRunner
	Orders    *repository.OrderRepo
	Drivers   *repository.DriverRepo
}

func newOrderService(in serviceIn) *orders.Service {
	return orders.NewService(orders.Deps{
		Tx:        in.Tx,
		Reader:    in.Orders,
		Drivers:   in.Drivers,
		Publisher: in.Publisher,
		Metrics:   in.Metrics,
		Logger:    in.Logger,
	}, orders.Options{
		OperationTimeout:  in.Config.Orders.OperationTimeout,
		StrictTransitions: in.Config.Orders.StrictTransitions,
	})
}

func newAssignmentService(in serviceIn) *assignment.Service {
	return assignment.NewService(in.Tx, in.Publisher, in.Metrics, assignment.Options{
		OperationTimeout: in.Config.Orders.OperationTimeout,
		BulkMaxItems:     in.Config.Orders.BulkMaxItems,
	}, in.Logger)
}

func newDriverService(in serviceIn) *drivers.Service {
	return drivers.NewService(in.Drivers, in.Tx, in.Publisher, in.Config.Orders.OperationTimeout, in.Logger)
}
