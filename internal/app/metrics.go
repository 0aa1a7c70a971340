package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"order-service/internal/metrics"
)

func newRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

func newOrdersMetrics(reg prometheus.Registerer) (*metrics.Orders, error) {
	m := metrics.NewOrders()
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register order metrics: %w", err)
		}
	}
	return m, nil
}

type countersOut struct {
	dig.Out
	RateLimitExceeded  prometheus.Counter `name:"rate_limit_exceeded_total"`
	IntegrationRetries prometheus.Counter `name:"integration_retries_total"`
}

func newCounters(reg prometheus.Registerer) (countersOut, error) {
	out := countersOut{
		RateLimitExceeded:  metrics.NewRateLimitExceededTotal(),
		IntegrationRetries: metrics.NewIntegrationRetriesTotal(),
	}
	for _, c := range []prometheus.Collector{out.RateLimitExceeded, out.IntegrationRetries} {
		if err := reg.Register(c); err != nil {
			return countersOut{}, fmt.Errorf("register counters: %w", err)
		}
	}
	return out, nil
}
