package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"order-service/internal/domain"
	"order-service/internal/http/middleware"
	"order-service/internal/service/orders"
)

var (
	admin  = domain.Actor{UserID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}
	client = domain.Actor{UserID: 10, Email: "client@example.com", Role: domain.RoleClient}
	driver = domain.Actor{UserID: 20, Email: "driver@example.com", Role: domain.RoleDriver}
)

type orderStub struct {
	create       func(domain.Actor, orders.CreateInput) (domain.Order, error)
	get          func(domain.Actor, int64) (domain.Order, error)
	list         func(domain.Actor, domain.OrderFilter) ([]domain.Order, error)
	history      func(domain.Actor, int64) ([]domain.StatusHistory, error)
	updateStatus func(domain.Actor, domain.StatusChange) (domain.StatusChangeResult, error)
}

func (s *orderStub) Create(_ context.Context, a domain.Actor, in orders.CreateInput) (domain.Order, error) {
	return s.create(a, in)
}

func (s *orderStub) Get(_ context.Context, a domain.Actor, id int64) (domain.Order, error) {
	return s.get(a, id)
}

func (s *orderStub) List(_ context.Context, a domain.Actor, f domain.OrderFilter) ([]domain.Order, error) {
	return s.list(a, f)
}

func (s *orderStub) History(_ context.Context, a domain.Actor, id int64) ([]domain.StatusHistory, error) {
	return s.history(a, id)
}

func (s *orderStub) UpdateStatus(_ context.Context, a domain.Actor, c domain.StatusChange) (domain.StatusChangeResult, error) {
	return s.updateStatus(a, c)
}

type assignmentStub struct {
	assign    func(domain.Actor, domain.AssignRequest) (domain.AssignResult, error)
	bulk      func(domain.Actor, []domain.AssignRequest) (domain.BulkAssignResult, error)
	emergency func(domain.Actor, domain.EmergencyReassignRequest) (domain.EmergencyReassignResult, error)
	accept    func(domain.Actor, int64) (domain.AcceptResult, error)
	complete  func(domain.Actor, domain.ProofOfDelivery) (domain.CompletionResult, error)
}

func (s *assignmentStub) Assign(_ context.Context, a domain.Actor, r domain.AssignRequest) (domain.AssignResult, error) {
	return s.assign(a, r)
}

func (s *assignmentStub) BulkAssign(_ context.Context, a domain.Actor, items []domain.AssignRequest) (domain.BulkAssignResult, error) {
	return s.bulk(a, items)
}

func (s *assignmentStub) EmergencyReassign(_ context.Context, a domain.Actor, r domain.EmergencyReassignRequest) (domain.EmergencyReassignResult, error) {
	return s.emergency(a, r)
}

func (s *assignmentStub) Accept(_ context.Context, a domain.Actor, id int64) (domain.AcceptResult, error) {
	return s.accept(a, id)
}

func (s *assignmentStub) CompleteDelivery(_ context.Context, a domain.Actor, p domain.ProofOfDelivery) (domain.CompletionResult, error) {
	return s.complete(a, p)
}

type driverStub struct {
	get          func(int64) (*domain.Driver, error)
	byUser       func(int64) (*domain.Driver, error)
	list         func(domain.DriverFilter) ([]domain.Driver, error)
	create       func(domain.Actor, *domain.Driver) (int64, error)
	updateStatus func(domain.Actor, domain.DriverStatusChange) (*domain.Driver, error)
}

func (s *driverStub) Get(_ context.Context, id int64) (*domain.Driver, error) { return s.get(id) }

func (s *driverStub) ByUser(_ context.Context, id int64) (*domain.Driver, error) { return s.byUser(id) }

func (s *driverStub) List(_ context.Context, f domain.DriverFilter) ([]domain.Driver, error) {
	return s.list(f)
}

func (s *driverStub) Create(_ context.Context, a domain.Actor, d *domain.Driver) (int64, error) {
	return s.create(a, d)
}

func (s *driverStub) UpdateStatus(_ context.Context, a domain.Actor, c domain.DriverStatusChange) (*domain.Driver, error) {
	return s.updateStatus(a, c)
}

type integrationStub struct {
	retry func(domain.Actor, int64) ([]domain.IntegrationSync, error)
}

func (s *integrationStub) Retry(_ context.Context, a domain.Actor, id int64) ([]domain.IntegrationSync, error) {
	return s.retry(a, id)
}

type socketStub struct {
	served int64
}

func (s *socketStub) ServeDriver(w http.ResponseWriter, _ *http.Request, driverID int64) {
	s.served = driverID
	w.WriteHeader(http.StatusSwitchingProtocols)
}

// call runs h with chi URL params and an optional authenticated actor.
func call(h http.HandlerFunc, method, target, body string, actor *domain.Actor, params map[string]string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if actor != nil {
		ctx = middleware.WithActor(ctx, *actor)
	}

	rr := httptest.NewRecorder()
	h(rr, req.WithContext(ctx))
	return rr
}

type decoded struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) decoded {
	t.Helper()
	var d decoded
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	return d
}

func jsonField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[key]
}
