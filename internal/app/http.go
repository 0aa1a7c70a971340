package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/dig"

	"order-service/internal/config"
	"order-service/internal/http/handlers"
	"order-service/internal/http/middleware"
	"order-service/internal/http/middleware/ratelimit"
	"order-service/internal/http/router"
	"order-service/internal/logx"
	"order-service/internal/service/assignment"
	"order-service/internal/service/drivers"
	"order-service/internal/service/integrations"
	"order-service/internal/service/orders"
	"order-service/internal/transport/ws"
)

func registerHTTP(container *dig.Container) error {
	return provideAll(container,
		newVerifier,
		handlers.New,
		func(l logx.Logger, s *orders.Service) *handlers.OrderHandler { return handlers.NewOrderHandler(l, s) },
		func(l logx.Logger, s *assignment.Service) *handlers.AssignmentHandler {
			return handlers.NewAssignmentHandler(l, s)
		},
		func(l logx.Logger, s *drivers.Service, hub *ws.Hub) *handlers.DriverHandler {
			return handlers.NewDriverHandler(l, s, hub)
		},
		func(l logx.Logger, s *integrations.Service) *handlers.IntegrationHandler {
			return handlers.NewIntegrationHandler(l, s)
		},
		newRouter,
		newServer,
	)
}

func newVerifier(cfg *config.Config) (*middleware.Verifier, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return middleware.NewVerifier(cfg.Auth.JWTSecret), nil
}

type routerIn struct {
	dig.In
	Config       *config.Config
	Logger       logx.Logger
	Verifier     *middleware.Verifier
	RateLimit    *ratelimit.Middleware
	Base         *handlers.Handlers
	Orders       *handlers.OrderHandler
	Assignments  *handlers.AssignmentHandler
	Drivers      *handlers.DriverHandler
	Integrations *handlers.IntegrationHandler
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Logger:       in.Logger,
		Verifier:     in.Verifier,
		RateLimit:    in.RateLimit,
		Base:         in.Base,
		Orders:       in.Orders,
		Assignments:  in.Assignments,
		Drivers:      in.Drivers,
		Integrations: in.Integrations,
		Pprof:        in.Config.Debug.Pprof,
	})
}

func newServer(cfg *config.Config, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// pprof profile and trace stream for up to 30s by default
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
