// Package external holds the clients of the downstream warehouse (WMS), route optimization (ROS)
// and customer management (CMS) systems.
package external

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"order-service/internal/domain"
)

// ErrUnavailable marks a transient failure of an external system.
var ErrUnavailable = errors.New("external system unavailable")

// Receipt is the acknowledgement returned by an external system.
type Receipt struct {
	Reference string
	Message   string
}

// WMS validates orders against warehouse stock and pickup slots.
type WMS interface {
	ValidateOrder(ctx context.Context, o domain.Order) (Receipt, error)
}

// ROS computes the delivery route of an order.
type ROS interface {
	OptimizeRoute(ctx context.Context, o domain.Order) (Receipt, error)
}

// CMS registers the order with customer management.
type CMS interface {
	CreateIntake(ctx context.Context, o domain.Order) (Receipt, error)
}

// Mock is a stand-in client for all three systems. It performs no network I/O and
// acknowledges every call after Latency, unless Err is set.
type Mock struct {
	Latency time.Duration
	Err     error
}

// NewMock returns a Mock that answers immediately.
func NewMock() *Mock { return &Mock{} }

// ValidateOrder implements WMS.
func (m *Mock) ValidateOrder(ctx context.Context, o domain.Order) (Receipt, error) {
	return m.answer(ctx, domain.SystemWMS, o, "order validated")
}

// OptimizeRoute implements ROS.
func (m *Mock) OptimizeRoute(ctx context.Context, o domain.Order) (Receipt, error) {
	return m.answer(ctx, domain.SystemROS, o, "route optimized")
}

// CreateIntake implements CMS.
func (m *Mock) CreateIntake(ctx context.Context, o domain.Order) (Receipt, error) {
	return m.answer(ctx, domain.SystemCMS, o, "intake created")
}

func (m *Mock) answer(ctx context.Context, system domain.ExternalSystem, o domain.Order, msg string) (Receipt, error) {
	if m.Latency > 0 {
		t := time.NewTimer(m.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, fmt.Errorf("%s: %w", system, ctx.Err())
		case <-t.C:
		}
	}
	if m.Err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", system, m.Err)
	}
	ref := fmt.Sprintf("%s-%d-%s", strings.ToUpper(string(system)), o.ID, uuid.NewString()[:8])
	return Receipt{Reference: ref, Message: msg}, nil
}
