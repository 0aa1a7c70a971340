package assignment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/metrics"
	"order-service/internal/ports/ordertx"
	"order-service/internal/service/assignment"
	testlog "order-service/internal/testutil"
	"order-service/internal/testutil/txfake"
)

var (
	admin      = domain.Actor{UserID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}
	dispatcher = domain.Actor{UserID: 2, Role: domain.RoleDispatcher}
	client     = domain.Actor{UserID: 3, Role: domain.RoleClient}
)

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Event
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.got))
	for _, e := range p.got {
		out = append(out, e.Type)
	}
	return out
}

func seed(store *txfake.Store) {
	store.PutOrder(domain.Order{ID: 42, ClientID: 3, Status: domain.OrderPending, Priority: domain.PriorityMedium})
	store.PutDriver(domain.Driver{ID: 7, UserID: 70, Status: domain.DriverAvailable, IsActive: true})
}

func newService(store assignment.TxRunner, pub assignment.Publisher, m *metrics.Orders) *assignment.Service {
	return assignment.NewService(store, pub, m, assignment.Options{OperationTimeout: time.Second}, nil)
}

func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	if msg != "" {
		require.Equal(t, msg, apperr.Message(err, ""))
	}
}

func TestAssign_Order42Driver7(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	seed(store)
	pub := &recordingPublisher{}
	m := metrics.NewOrders()
	rec := testlog.New()
	svc := assignment.NewService(store, pub, m, assignment.Options{}, rec.Logger())

	res, err := svc.Assign(context.Background(), admin, domain.AssignRequest{OrderID: 42, DriverID: 7, Notes: "fragile"})
	require.NoError(t, err)

	require.Equal(t, domain.OrderPickupScheduled, res.OrderStatus)
	require.Equal(t, domain.OrderPickupScheduled, store.Order(42).Status)
	require.Equal(t, domain.DriverBusy, store.Driver(7).Status)

	as := store.Assignments(42)
	require.Len(t, as, 1)
	require.Equal(t, domain.AssignmentPending, as[0].Status)
	require.EqualValues(t, 7, as[0].DriverID)
	require.Equal(t, admin.UserID, as[0].AssignedBy)
	require.Equal(t, res.AssignmentID, as[0].ID)

	hist := store.History(42)
	require.Len(t, hist, 1)
	require.Equal(t, domain.OrderPickupScheduled, hist[0].Status)
	require.Equal(t, domain.ActorType("admin"), hist[0].ActorType)
	require.NotNil(t, hist[0].ActorID)
	require.Equal(t, admin.UserID, *hist[0].ActorID)
	require.Contains(t, hist[0].Notes, "fragile")

	require.Equal(t, []domain.EventType{domain.EventOrderAssignedToDriver}, pub.types())
	require.EqualValues(t, 7, pub.got[0].DriverID)
	require.EqualValues(t, 42, pub.got[0].OrderID)

	require.InDelta(t, 1, testutil.ToFloat64(m.Assignments.WithLabelValues("assign", "ok")), 1e-9)
	_, logged := rec.Find("order assigned")
	require.True(t, logged)
}

func TestAssign_PreconditionOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(s *txfake.Store)
		req     domain.AssignRequest
		kind    error
		msg     string
	}{
		{
			name: "order missing",
			req:  domain.AssignRequest{OrderID: 99, DriverID: 7},
			kind: apperr.ErrNotFound,
			msg:  "order not found",
		},
		{
			name: "delivered order",
			prepare: func(s *txfake.Store) {
				s.PutOrder(domain.Order{ID: 42, Status: domain.OrderDelivered})
			},
			req:  domain.AssignRequest{OrderID: 42, DriverID: 99},
			kind: apperr.ErrConflict,
			msg:  "order cannot be assigned in status delivered",
		},
		{
			name: "already assigned is checked before driver",
			prepare: func(s *txfake.Store) {
				s.PutAssignment(domain.Assignment{ID: 1, OrderID: 42, DriverID: 8, Status: domain.AssignmentAccepted})
			},
			req:  domain.AssignRequest{OrderID: 42, DriverID: 99},
			kind: apperr.ErrConflict,
			msg:  "order is already assigned",
		},
		{
			name: "driver missing",
			req:  domain.AssignRequest{OrderID: 42, DriverID: 99},
			kind: apperr.ErrNotFound,
			msg:  "driver not found",
		},
		{
			name: "driver busy",
			prepare: func(s *txfake.Store) {
				s.PutDriver(domain.Driver{ID: 7, Status: domain.DriverBusy, IsActive: true})
			},
			req:  domain.AssignRequest{OrderID: 42, DriverID: 7},
			kind: apperr.ErrConflict,
			msg:  "driver is not available",
		},
		{
			name: "driver inactive",
			prepare: func(s *txfake.Store) {
				s.PutDriver(domain.Driver{ID: 7, Status: domain.DriverAvailable, IsActive: false})
			},
			req:  domain.AssignRequest{OrderID: 42, DriverID: 7},
			kind: apperr.ErrConflict,
			msg:  "driver is not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := txfake.New()
			seed(store)
			if tt.prepare != nil {
				tt.prepare(store)
			}
			pub := &recordingPublisher{}
			svc := newService(store, pub, nil)

			_, err := svc.Assign(context.Background(), dispatcher, tt.req)
			requireKind(t, err, tt.kind, tt.msg)
			require.Empty(t, pub.got)
			require.Empty(t, store.History(42))
		})
	}
}

func TestAssign_InputAndRole(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockTxRunner(ctrl)
	pub := NewMockPublisher(ctrl)
	svc := newService(repo, pub, nil)
	ctx := context.Background()

	_, err := svc.Assign(ctx, client, domain.AssignRequest{OrderID: 1, DriverID: 1})
	requireKind(t, err, apperr.ErrForbidden, "")

	_, err = svc.Assign(ctx, admin, domain.AssignRequest{OrderID: 0, DriverID: 1})
	requireKind(t, err, apperr.ErrInvalid, "order_id must be positive")

	pickup := time.Now()
	before := pickup.Add(-time.Hour)
	_, err = svc.Assign(ctx, admin, domain.AssignRequest{OrderID: 1, DriverID: 1, EstimatedPickup: &pickup, EstimatedDelivery: &before})
	requireKind(t, err, apperr.ErrInvalid, "")
}

func TestAssign_RepoErrorIsNotBusiness(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockTxRunner(ctrl)
	pub := NewMockPublisher(ctrl)
	boom := errors.New("connection reset")

	repo.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(ordertx.Repository) error) error {
			store := txfake.New()
			seed(store)
			store.FailOn = map[string]error{"InsertAssignment": boom}
			return store.WithTx(ctx, fn)
		})

	m := metrics.NewOrders()
	svc := newService(repo, pub, m)

	_, err := svc.Assign(context.Background(), admin, domain.AssignRequest{OrderID: 42, DriverID: 7})
	require.ErrorIs(t, err, boom)
	require.False(t, apperr.Business(err))
	require.InDelta(t, 1, testutil.ToFloat64(m.Assignments.WithLabelValues("assign", "error")), 1e-9)
}

func TestAssign_PublishFailureIsLoggedOnly(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	store := txfake.New()
	seed(store)
	pub := NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	rec := testlog.New()
	m := metrics.NewOrders()
	svc := assignment.NewService(store, pub, m, assignment.Options{}, rec.Logger())

	_, err := svc.Assign(context.Background(), admin, domain.AssignRequest{OrderID: 42, DriverID: 7})
	require.NoError(t, err)
	require.Equal(t, domain.DriverBusy, store.Driver(7).Status)

	e, ok := rec.Find("event publish failed")
	require.True(t, ok)
	require.Equal(t, "error", e.Level)
	v, _ := e.Field("event_type")
	require.Equal(t, string(domain.EventOrderAssignedToDriver), v)
	require.InDelta(t, 1, testutil.ToFloat64(m.PublishFailures.WithLabelValues(string(domain.EventOrderAssignedToDriver))), 1e-9)
}

func TestAssign_ConcurrentSameDriver(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	seed(store)
	store.PutOrder(domain.Order{ID: 43, Status: domain.OrderPending})
	svc := newService(store, events.Nop(), nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, orderID := range []int64{42, 43} {
		wg.Add(1)
		go func(i int, orderID int64) {
			defer wg.Done()
			_, errs[i] = svc.Assign(context.Background(), admin, domain.AssignRequest{OrderID: orderID, DriverID: 7})
		}(i, orderID)
	}
	wg.Wait()

	var ok, lost int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireKind(t, err, apperr.ErrConflict, "driver is not available")
		lost++
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, lost)
}

func TestBulkAssign_PartialSuccess(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	store.PutOrder(domain.Order{ID: 1, Status: domain.OrderPending})
	store.PutOrder(domain.Order{ID: 2, Status: domain.OrderDelivered})
	store.PutOrder(domain.Order{ID: 3, Status: domain.OrderProcessing})
	for _, id := range []int64{10, 20, 30} {
		store.PutDriver(domain.Driver{ID: id, Status: domain.DriverAvailable, IsActive: true})
	}
	pub := &recordingPublisher{}
	m := metrics.NewOrders()
	svc := newService(store, pub, m)

	res, err := svc.BulkAssign(context.Background(), admin, []domain.AssignRequest{
		{OrderID: 1, DriverID: 10},
		{OrderID: 2, DriverID: 20},
		{OrderID: 3, DriverID: 30},
	})
	require.NoError(t, err)
	require.Len(t, res.Successful, 2)
	require.Len(t, res.Failed, 1)
	require.EqualValues(t, 2, res.Failed[0].OrderID)
	require.EqualValues(t, 20, res.Failed[0].DriverID)
	require.Equal(t, "order cannot be assigned in status delivered", res.Failed[0].Reason)

	require.Equal(t, domain.DriverAvailable, store.Driver(20).Status)
	require.Equal(t, domain.DriverBusy, store.Driver(10).Status)
	require.Equal(t, domain.DriverBusy, store.Driver(30).Status)
	require.Equal(t, 1, store.Commits)
	require.Len(t, pub.got, 2)
	require.InDelta(t, 2, testutil.ToFloat64(m.BulkItems.WithLabelValues("successful")), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(m.BulkItems.WithLabelValues("failed")), 1e-9)
}

func TestBulkAssign_FailedItemRollsBackOnlyItself(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	store.PutOrder(domain.Order{ID: 1, Status: domain.OrderPending})
	store.PutOrder(domain.Order{ID: 2, Status: domain.OrderPending})
	store.PutDriver(domain.Driver{ID: 10, Status: domain.DriverAvailable, IsActive: true})
	svc := newService(store, events.Nop(), nil)

	res, err := svc.BulkAssign(context.Background(), admin, []domain.AssignRequest{
		{OrderID: 1, DriverID: 10},
		{OrderID: 2, DriverID: 10},
		{OrderID: 0, DriverID: 10},
	})
	require.NoError(t, err)
	require.Len(t, res.Successful, 1)
	require.Len(t, res.Failed, 2)
	require.Equal(t, "driver is not available", res.Failed[0].Reason)
	require.Equal(t, "order_id must be positive", res.Failed[1].Reason)

	require.Equal(t, domain.OrderPending, store.Order(2).Status)
	require.Empty(t, store.Assignments(2))
	require.Empty(t, store.History(2))
	require.Len(t, store.History(1), 1)
}

func TestBulkAssign_EventCarriesEstimatesOfSucceedingItem(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	store.PutOrder(domain.Order{ID: 1, Status: domain.OrderPending})
	store.PutDriver(domain.Driver{ID: 10, Status: domain.DriverAvailable, IsActive: true})
	pub := &recordingPublisher{}
	svc := newService(store, pub, nil)

	stale := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fresh := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	res, err := svc.BulkAssign(context.Background(), admin, []domain.AssignRequest{
		{OrderID: 1, DriverID: 99, EstimatedPickup: &stale},
		{OrderID: 1, DriverID: 10, EstimatedPickup: &fresh},
	})
	require.NoError(t, err)
	require.Len(t, res.Successful, 1)
	require.Len(t, res.Failed, 1)
	require.Equal(t, "driver not found", res.Failed[0].Reason)

	require.Len(t, pub.got, 1)
	var p events.Assigned
	require.NoError(t, pub.got[0].Decode(&p))
	require.EqualValues(t, 10, p.DriverID)
	require.NotNil(t, p.EstimatedPickup)
	require.True(t, fresh.Equal(*p.EstimatedPickup))
}

func TestBulkAssign_Limits(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockTxRunner(ctrl)
	svc := assignment.NewService(repo, events.Nop(), nil, assignment.Options{BulkMaxItems: 2}, nil)
	ctx := context.Background()

	_, err := svc.BulkAssign(ctx, admin, nil)
	requireKind(t, err, apperr.ErrInvalid, "")

	_, err = svc.BulkAssign(ctx, admin, make([]domain.AssignRequest, 3))
	requireKind(t, err, apperr.ErrInvalid, "assignments must contain at most 2 items")

	_, err = svc.BulkAssign(ctx, domain.Actor{UserID: 5, Role: domain.RoleDriver}, make([]domain.AssignRequest, 1))
	requireKind(t, err, apperr.ErrForbidden, "")
}

func TestBulkAssign_InfrastructureErrorAbortsBatch(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	seed(store)
	boom := errors.New("deadline exceeded")
	store.FailOn = map[string]error{"AppendHistory": boom}
	pub := &recordingPublisher{}
	svc := newService(store, pub, nil)

	_, err := svc.BulkAssign(context.Background(), admin, []domain.AssignRequest{{OrderID: 42, DriverID: 7}})
	require.ErrorIs(t, err, boom)
	require.Equal(t, domain.DriverAvailable, store.Driver(7).Status)
	require.Empty(t, pub.got)
}

func TestEmergencyReassign_FreesOldBusiesNew(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	store.PutOrder(domain.Order{ID: 42, Status: domain.OrderInTransit, Priority: domain.PriorityLow})
	store.PutDriver(domain.Driver{ID: 7, Status: domain.DriverBusy, IsActive: true})
	store.PutDriver(domain.Driver{ID: 8, Status: domain.DriverAvailable, IsActive: true})
	store.PutAssignment(domain.Assignment{ID: 5, OrderID: 42, DriverID: 7, Status: domain.AssignmentInProgress, AdminNotes: "vip"})
	pub := &recordingPublisher{}
	svc := newService(store, pub, nil)

	res, err := svc.EmergencyReassign(context.Background(), admin, domain.EmergencyReassignRequest{
		OrderID: 42, NewDriverID: 8, Reason: "  vehicle breakdown ", Urgent: true,
	})
	require.NoError(t, err)

	require.Equal(t, domain.DriverAvailable, store.Driver(7).Status)
	require.Equal(t, domain.DriverBusy, store.Driver(8).Status)
	require.Equal(t, domain.PriorityUrgent, store.Order(42).Priority)
	require.Equal(t, domain.OrderInTransit, store.Order(42).Status)
	require.Equal(t, domain.PriorityUrgent, res.Priority)
	require.NotNil(t, res.PreviousDriverID)
	require.EqualValues(t, 7, *res.PreviousDriverID)

	as := store.Assignments(42)
	require.Len(t, as, 2)
	require.Equal(t, domain.AssignmentCancelled, as[0].Status)
	require.Equal(t, "vip\nemergency reassignment: vehicle breakdown", as[0].AdminNotes)
	require.Equal(t, domain.AssignmentPending, as[1].Status)
	require.EqualValues(t, 8, as[1].DriverID)

	hist := store.History(42)
	require.Len(t, hist, 1)
	require.Contains(t, hist[0].Notes, "vehicle breakdown")

	require.Equal(t, []domain.EventType{domain.EventOrderEmergencyReassigned}, pub.types())
	var p events.Reassigned
	require.NoError(t, pub.got[0].Decode(&p))
	require.Equal(t, "vehicle breakdown", p.Reason)
}

func TestEmergencyReassign_WithoutActiveAssignment(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	seed(store)
	svc := newService(store, events.Nop(), nil)

	res, err := svc.EmergencyReassign(context.Background(), dispatcher, domain.EmergencyReassignRequest{
		OrderID: 42, NewDriverID: 7, Reason: "manual dispatch",
	})
	require.NoError(t, err)
	require.Nil(t, res.PreviousDriverID)
	require.Equal(t, domain.PriorityMedium, res.Priority)
	require.Equal(t, domain.OrderPickupScheduled, store.Order(42).Status)
	require.Equal(t, domain.DriverBusy, store.Driver(7).Status)
}

func TestEmergencyReassign_Preconditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(s *txfake.Store)
		req     domain.EmergencyReassignRequest
		kind    error
		msg     string
	}{
		{
			name: "blank reason",
			req:  domain.EmergencyReassignRequest{OrderID: 42, NewDriverID: 8, Reason: "   "},
			kind: apperr.ErrInvalid,
			msg:  "reason is required",
		},
		{
			name: "terminal order",
			prepare: func(s *txfake.Store) {
				s.PutOrder(domain.Order{ID: 42, Status: domain.OrderDelivered})
			},
			req:  domain.EmergencyReassignRequest{OrderID: 42, NewDriverID: 8, Reason: "x"},
			kind: apperr.ErrConflict,
			msg:  "order cannot be reassigned in status delivered",
		},
		{
			name: "completed assignment",
			prepare: func(s *txfake.Store) {
				s.PutAssignment(domain.Assignment{ID: 5, OrderID: 42, DriverID: 7, Status: domain.AssignmentCompleted})
			},
			req:  domain.EmergencyReassignRequest{OrderID: 42, NewDriverID: 8, Reason: "x"},
			kind: apperr.ErrConflict,
			msg:  "assignment cannot be reassigned in status completed",
		},
		{
			name: "same driver",
			prepare: func(s *txfake.Store) {
				s.PutAssignment(domain.Assignment{ID: 5, OrderID: 42, DriverID: 8, Status: domain.AssignmentPending})
			},
			req:  domain.EmergencyReassignRequest{OrderID: 42, NewDriverID: 8, Reason: "x"},
			kind: apperr.ErrConflict,
			msg:  "order is already assigned to this driver",
		},
		{
			name: "new driver unavailable",
			prepare: func(s *txfake.Store) {
				s.PutDriver(domain.Driver{ID: 8, Status: domain.DriverOffline, IsActive: true})
			},
			req:  domain.EmergencyReassignRequest{OrderID: 42, NewDriverID: 8, Reason: "x"},
			kind: apperr.ErrConflict,
			msg:  "driver is not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := txfake.New()
			seed(store)
			store.PutDriver(domain.Driver{ID: 8, Status: domain.DriverAvailable, IsActive: true})
			if tt.prepare != nil {
				tt.prepare(store)
			}
			svc := newService(store, events.Nop(), nil)

			_, err := svc.EmergencyReassign(context.Background(), admin, tt.req)
			requireKind(t, err, tt.kind, tt.msg)
			require.Empty(t, store.History(42))
		})
	}
}

func TestAccept(t *testing.T) {
	t.Parallel()

	driverActor := domain.Actor{UserID: 70, Role: domain.RoleDriver}
	otherDriver := domain.Actor{UserID: 71, Role: domain.RoleDriver}

	store := txfake.New()
	seed(store)
	pub := &recordingPublisher{}
	svc := newService(store, pub, nil)
	ctx := context.Background()

	_, err := svc.Accept(ctx, driverActor, 42)
	requireKind(t, err, apperr.ErrNotFound, "assignment not found")

	_, err = svc.Assign(ctx, admin, domain.AssignRequest{OrderID: 42, DriverID: 7})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, otherDriver, 42)
	requireKind(t, err, apperr.ErrForbidden, "order is not assigned to you")

	_, err = svc.Accept(ctx, admin, 42)
	requireKind(t, err, apperr.ErrForbidden, "")

	res, err := svc.Accept(ctx, driverActor, 42)
	require.NoError(t, err)
	require.EqualValues(t, 7, res.DriverID)
	as := store.Assignments(42)
	require.Equal(t, domain.AssignmentAccepted, as[0].Status)
	require.NotNil(t, as[0].AcceptedAt)

	_, err = svc.Accept(ctx, driverActor, 42)
	requireKind(t, err, apperr.ErrConflict, "assignment cannot be accepted in status accepted")

	require.Equal(t, []domain.EventType{domain.EventOrderAssignedToDriver, domain.EventAssignmentAccepted}, pub.types())
}

func TestCompleteDelivery_IdempotentProof(t *testing.T) {
	t.Parallel()

	driverActor := domain.Actor{UserID: 70, Role: domain.RoleDriver}

	store := txfake.New()
	store.PutOrder(domain.Order{ID: 42, Status: domain.OrderOutForDelivery})
	store.PutDriver(domain.Driver{ID: 7, UserID: 70, Status: domain.DriverBusy, IsActive: true})
	store.PutAssignment(domain.Assignment{ID: 5, OrderID: 42, DriverID: 7, Status: domain.AssignmentInProgress})
	pub := &recordingPublisher{}
	svc := newService(store, pub, nil)
	ctx := context.Background()

	_, err := svc.CompleteDelivery(ctx, client, domain.ProofOfDelivery{OrderID: 42, RecipientName: "Ann"})
	requireKind(t, err, apperr.ErrForbidden, "")

	_, err = svc.CompleteDelivery(ctx, driverActor, domain.ProofOfDelivery{OrderID: 42})
	requireKind(t, err, apperr.ErrInvalid, "")

	first, err := svc.CompleteDelivery(ctx, driverActor, domain.ProofOfDelivery{OrderID: 42, RecipientName: "Ann"})
	require.NoError(t, err)
	require.Equal(t, domain.OrderDelivered, store.Order(42).Status)
	require.Equal(t, domain.DriverAvailable, store.Driver(7).Status)
	require.Equal(t, domain.AssignmentCompleted, store.Assignments(42)[0].Status)
	require.Len(t, store.History(42), 1)

	second, err := svc.CompleteDelivery(ctx, dispatcher, domain.ProofOfDelivery{OrderID: 42, RecipientName: "Bob", PhotoRef: "s3://pod/42.jpg"})
	require.NoError(t, err)
	require.Equal(t, first.ProofID, second.ProofID)
	require.Equal(t, first.CompletedAt, second.CompletedAt)

	proof, ok := store.Proof(42)
	require.True(t, ok)
	require.Equal(t, "Bob", proof.RecipientName)
	require.Len(t, store.History(42), 1)
	require.Equal(t, []domain.EventType{domain.EventOrderDelivered}, pub.types())
}

func TestCompleteDelivery_OtherDriverForbidden(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	store.PutOrder(domain.Order{ID: 42, Status: domain.OrderInTransit})
	store.PutDriver(domain.Driver{ID: 7, UserID: 70, Status: domain.DriverBusy, IsActive: true})
	store.PutAssignment(domain.Assignment{ID: 5, OrderID: 42, DriverID: 7, Status: domain.AssignmentInProgress})
	svc := newService(store, events.Nop(), nil)

	_, err := svc.CompleteDelivery(context.Background(), domain.Actor{UserID: 99, Role: domain.RoleDriver},
		domain.ProofOfDelivery{OrderID: 42, SignatureRef: "sig"})
	requireKind(t, err, apperr.ErrForbidden, "order is not assigned to you")
	_, stored := store.Proof(42)
	require.False(t, stored)
}
