package integrations

import (
	"context"

	"order-service/internal/domain"
	"order-service/internal/events"
)

type actionFunc func(context.Context, events.Event) error

type actionFactory struct {
	byType map[domain.EventType]actionFunc
}

func newActionFactory(onCreated, onReassigned actionFunc) *actionFactory {
	return &actionFactory{
		byType: map[domain.EventType]actionFunc{
			domain.EventOrderCreated: onCreated,
			// a new driver means a new route
			domain.EventOrderEmergencyReassigned: onReassigned,
		},
	}
}

func (f *actionFactory) get(t domain.EventType) (actionFunc, bool) {
	fn, ok := f.byType[t]
	return fn, ok
}
