package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"order-service/internal/domain"
	"order-service/internal/http/handlers"
	"order-service/internal/http/middleware"
	"order-service/internal/http/middleware/ratelimit"
	"order-service/internal/http/pprofserver"
	"order-service/internal/logx"
)

// Deps are the pieces the HTTP surface is assembled from.
type Deps struct {
	Logger       logx.Logger
	Verifier     *middleware.Verifier
	RateLimit    *ratelimit.Middleware
	Base         *handlers.Handlers
	Orders       *handlers.OrderHandler
	Assignments  *handlers.AssignmentHandler
	Drivers      *handlers.DriverHandler
	Integrations *handlers.IntegrationHandler
	Pprof        bool
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = logx.Nop()
	}
	operators := middleware.RequireRole(domain.RoleAdmin, domain.RoleDispatcher)
	authenticate := middleware.Authenticate(d.Verifier, logger)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observability(logger))
	r.Use(chimw.Recoverer)

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(d.Base.NotFound)
	r.MethodNotAllowed(d.Base.MethodNotAllowed)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(authenticate)
		if d.RateLimit != nil {
			api.Use(d.RateLimit.Handler())
		}

		api.Route("/orders", func(o chi.Router) {
			o.Post("/", d.Orders.Create)
			o.Get("/", d.Orders.List)
			o.Get("/{id}", d.Orders.Get)
			o.Get("/{id}/history", d.Orders.History)
			o.Patch("/{id}/status", d.Orders.UpdateStatus)
			o.With(operators).Post("/{id}/assign-driver", d.Assignments.Assign)
			o.With(middleware.RequireRole(domain.RoleDriver)).Post("/{id}/accept", d.Assignments.Accept)
			o.Post("/{id}/proof-of-delivery", d.Assignments.ProofOfDelivery)
		})

		api.Route("/admin", func(a chi.Router) {
			a.Use(operators)
			a.Post("/orders/bulk-assign", d.Assignments.BulkAssign)
			a.Post("/orders/{id}/emergency-reassign", d.Assignments.EmergencyReassign)
			a.Post("/orders/{id}/integrations/retry", d.Integrations.Retry)
		})

		api.Route("/drivers", func(dr chi.Router) {
			dr.With(operators).Get("/", d.Drivers.List)
			dr.With(operators).Post("/", d.Drivers.Create)
			dr.With(middleware.RequireRole(domain.RoleDriver)).Get("/me", d.Drivers.Me)
			dr.With(operators).Get("/{id}", d.Drivers.Get)
			dr.Patch("/{id}/status", d.Drivers.UpdateStatus)
		})

		api.With(middleware.RequireRole(domain.RoleDriver)).Get("/ws/drivers", d.Drivers.Socket)
	})

	if d.Pprof {
		r.With(authenticate, middleware.RequireRole(domain.RoleAdmin)).Mount(pprofserver.Prefix, pprofserver.Routes())
	}

	return r
}
