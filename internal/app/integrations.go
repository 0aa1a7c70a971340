package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"order-service/internal/config"
	"order-service/internal/gateway/external"
	"order-service/internal/logx"
	"order-service/internal/repository"
	"order-service/internal/service/integrations"
)

func registerIntegrations(container *dig.Container) error {
	return provideAll(container,
		newExternalSystems,
		newIntegrationService,
	)
}

type externalIn struct {
	dig.In
	Config  *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"integration_retries_total"`
}

// newExternalSystems wires the mock WMS/ROS/CMS clients behind the retrying wrapper.
func newExternalSystems(in externalIn) *external.Retrying {
	mock := external.NewMock()
	ic := in.Config.Integrations
	return external.NewRetrying(mock, mock, mock, in.Logger, in.Retries, external.RetryConfig{
		MaxAttempts: ic.MaxAttempts,
		BaseDelay:   ic.BaseDelay,
		MaxDelay:    ic.MaxDelay,
		Timeout:     ic.Timeout,
	})
}

func newIntegrationService(
	repo *repository.IntegrationRepo,
	orders *repository.OrderRepo,
	systems *external.Retrying,
	logger logx.Logger,
) *integrations.Service {
	return integrations.NewService(repo, orders, systems, integrations.Options{}, logger)
}
