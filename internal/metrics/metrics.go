package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewIntegrationRetriesTotal returns a Prometheus counter for the number of retry attempts against external systems
func NewIntegrationRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "integration_retries_total",
		Help: "Total number of retry attempts performed against external systems",
	})
}

// Orders groups the counters updated by the order services. A nil *Orders records nothing.
type Orders struct {
	Assignments     *prometheus.CounterVec
	BulkItems       *prometheus.CounterVec
	StatusUpdates   *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
}

// NewOrders creates the order service counters.
func NewOrders() *Orders {
	return &Orders{
		Assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_assignments_total",
			Help: "Assignment operations by operation and result",
		}, []string{"operation", "result"}),
		BulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_bulk_assign_items_total",
			Help: "Bulk assignment items by outcome",
		}, []string{"outcome"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "Committed order status changes by target status",
		}, []string{"status"}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_event_publish_failures_total",
			Help: "Events that could not be handed to the event bus",
		}, []string{"event_type"}),
	}
}

// Collectors returns every collector for registration.
func (m *Orders) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Assignments, m.BulkItems, m.StatusUpdates, m.PublishFailures}
}

// Assignment counts one assignment operation outcome.
func (m *Orders) Assignment(operation, result string) {
	if m == nil {
		return
	}
	m.Assignments.WithLabelValues(operation, result).Inc()
}

// BulkItem counts one bulk entry outcome.
func (m *Orders) BulkItem(outcome string) {
	if m == nil {
		return
	}
	m.BulkItems.WithLabelValues(outcome).Inc()
}

// StatusUpdate counts a committed status change.
func (m *Orders) StatusUpdate(status string) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(status).Inc()
}

// PublishFailure counts an event the bus rejected.
func (m *Orders) PublishFailure(eventType string) {
	if m == nil {
		return
	}
	m.PublishFailures.WithLabelValues(eventType).Inc()
}
