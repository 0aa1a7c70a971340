package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/service/orders"
	testlog "order-service/internal/testutil"
	"order-service/internal/testutil/txfake"
)

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

func validInput() orders.CreateInput {
	return orders.CreateInput{
		PickupAddress:   domain.Address{Line1: "1 Depot Rd", City: "Springfield"},
		DeliveryAddress: domain.Address{Line1: "42 Elm St", City: "Springfield"},
		Recipient:       domain.Recipient{Name: " Ann ", Phone: "+12025550100"},
	}
}

func TestCreate_ClientOwnsOrder(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	pub := &recordingPublisher{}
	rec := testlog.New()
	svc := orders.NewService(orders.Deps{Tx: store, Publisher: pub, Logger: rec.Logger()}, orders.Options{})

	in := validInput()
	in.ClientID = 999
	o, err := svc.Create(context.Background(), owner, in)
	require.NoError(t, err)

	require.Positive(t, o.ID)
	require.Equal(t, owner.UserID, o.ClientID)
	require.Equal(t, domain.OrderPending, o.Status)
	require.Equal(t, domain.PriorityMedium, o.Priority)
	require.Equal(t, "Ann", o.Recipient.Name)

	hist := store.History(o.ID)
	require.Len(t, hist, 1)
	require.Equal(t, domain.OrderPending, hist[0].Status)

	require.Len(t, pub.got, 1)
	require.Equal(t, domain.EventOrderCreated, pub.got[0].Type)
	var p events.OrderCreated
	require.NoError(t, pub.got[0].Decode(&p))
	require.Equal(t, owner.UserID, p.ClientID)

	_, ok := rec.Find("order created")
	require.True(t, ok)
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	svc := orders.NewService(orders.Deps{Tx: txfake.New()}, orders.Options{})
	ctx := context.Background()

	_, err := svc.Create(ctx, driverActor, validInput())
	require.ErrorIs(t, err, apperr.ErrForbidden)

	tests := []struct {
		name   string
		mutate func(in *orders.CreateInput)
	}{
		{"bad priority", func(in *orders.CreateInput) { in.Priority = "asap" }},
		{"no pickup city", func(in *orders.CreateInput) { in.PickupAddress.City = " " }},
		{"no delivery line", func(in *orders.CreateInput) { in.DeliveryAddress.Line1 = "" }},
		{"no recipient", func(in *orders.CreateInput) { in.Recipient.Name = "" }},
		{"bad phone", func(in *orders.CreateInput) { in.Recipient.Phone = "555-0100" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, admin, in)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestCreate_OperatorDefaultsClient(t *testing.T) {
	t.Parallel()

	svc := orders.NewService(orders.Deps{Tx: txfake.New()}, orders.Options{})
	in := validInput()
	in.Priority = domain.PriorityUrgent

	o, err := svc.Create(context.Background(), dispatcher, in)
	require.NoError(t, err)
	require.Equal(t, dispatcher.UserID, o.ClientID)
	require.Equal(t, domain.PriorityUrgent, o.Priority)
}

func TestGet_Visibility(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	reader := NewMockReader(ctrl)
	drivers := NewMockDriverLookup(ctrl)
	svc := orders.NewService(orders.Deps{Reader: reader, Drivers: drivers}, orders.Options{OperationTimeout: time.Second})
	ctx := context.Background()

	order := &domain.Order{ID: 42, ClientID: owner.UserID, Status: domain.OrderPending}
	reader.EXPECT().Get(gomock.Any(), int64(42)).Return(order, nil).Times(4)

	got, err := svc.Get(ctx, owner, 42)
	require.NoError(t, err)
	require.Equal(t, *order, got)

	_, err = svc.Get(ctx, stranger, 42)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	drivers.EXPECT().GetByUserID(gomock.Any(), driverActor.UserID).Return(&domain.Driver{ID: 7, UserID: 70}, nil).Times(2)
	reader.EXPECT().ActiveAssignment(gomock.Any(), int64(42)).Return(&domain.Assignment{ID: 5, OrderID: 42, DriverID: 7}, nil)
	_, err = svc.Get(ctx, driverActor, 42)
	require.NoError(t, err)

	reader.EXPECT().ActiveAssignment(gomock.Any(), int64(42)).Return(nil, nil)
	_, err = svc.Get(ctx, driverActor, 42)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGet_NotFoundAndErrors(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	reader := NewMockReader(ctrl)
	svc := orders.NewService(orders.Deps{Reader: reader}, orders.Options{})
	ctx := context.Background()

	_, err := svc.Get(ctx, admin, 0)
	require.ErrorIs(t, err, apperr.ErrInvalid)

	reader.EXPECT().Get(gomock.Any(), int64(1)).Return(nil, nil)
	_, err = svc.Get(ctx, admin, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	boom := errors.New("db down")
	reader.EXPECT().Get(gomock.Any(), int64(2)).Return(nil, boom)
	_, err = svc.Get(ctx, admin, 2)
	require.ErrorIs(t, err, boom)
}

func TestList_ScopesByRole(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	reader := NewMockReader(ctrl)
	drivers := NewMockDriverLookup(ctrl)
	svc := orders.NewService(orders.Deps{Reader: reader, Drivers: drivers}, orders.Options{})
	ctx := context.Background()

	reader.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
		require.NotNil(t, f.ClientID)
		require.Equal(t, owner.UserID, *f.ClientID)
		require.Equal(t, 50, *f.Limit)
		return []domain.Order{{ID: 1}}, nil
	})
	list, err := svc.List(ctx, owner, domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	drivers.EXPECT().GetByUserID(gomock.Any(), driverActor.UserID).Return(&domain.Driver{ID: 7}, nil)
	reader.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
		require.NotNil(t, f.DriverID)
		require.EqualValues(t, 7, *f.DriverID)
		return nil, nil
	})
	_, err = svc.List(ctx, driverActor, domain.OrderFilter{})
	require.NoError(t, err)

	drivers.EXPECT().GetByUserID(gomock.Any(), int64(71)).Return(nil, nil)
	list, err = svc.List(ctx, domain.Actor{UserID: 71, Role: domain.RoleDriver}, domain.OrderFilter{})
	require.NoError(t, err)
	require.Empty(t, list)

	big := 1000
	reader.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
		require.Nil(t, f.ClientID)
		require.Equal(t, 100, *f.Limit)
		return nil, nil
	})
	_, err = svc.List(ctx, admin, domain.OrderFilter{Limit: &big})
	require.NoError(t, err)
}

func TestList_InvalidFilters(t *testing.T) {
	t.Parallel()

	svc := orders.NewService(orders.Deps{}, orders.Options{})
	ctx := context.Background()

	bad := domain.OrderStatus("lost")
	_, err := svc.List(ctx, admin, domain.OrderFilter{Status: &bad})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	zero := 0
	_, err = svc.List(ctx, admin, domain.OrderFilter{Limit: &zero})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	neg := -1
	_, err = svc.List(ctx, admin, domain.OrderFilter{Offset: &neg})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestHistory_ChecksAccessFirst(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	reader := NewMockReader(ctrl)
	svc := orders.NewService(orders.Deps{Reader: reader}, orders.Options{})
	ctx := context.Background()

	reader.EXPECT().Get(gomock.Any(), int64(42)).Return(&domain.Order{ID: 42, ClientID: owner.UserID}, nil).Times(2)

	_, err := svc.History(ctx, stranger, 42)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	reader.EXPECT().History(gomock.Any(), int64(42)).Return(nil, nil)
	h, err := svc.History(ctx, owner, 42)
	require.NoError(t, err)
	require.NotNil(t, h)
	require.Empty(t, h)
}

// stuckPublisher waits until its context gives up, like a bus whose brokers are gone.
type stuckPublisher struct{}

func (stuckPublisher) Publish(ctx context.Context, _ events.Event) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCreate_StuckBusDoesNotHangCaller(t *testing.T) {
	t.Parallel()

	store := txfake.New()
	rec := testlog.New()
	svc := orders.NewService(orders.Deps{Tx: store, Publisher: stuckPublisher{}, Logger: rec.Logger()}, orders.Options{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Create(context.Background(), owner, validInput())
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err, "the order is committed regardless of the bus")
	case <-time.After(events.PublishTimeout + 2*time.Second):
		t.Fatal("Create did not return while the bus was stuck")
	}

	entry, ok := rec.Find("event publish failed")
	require.True(t, ok)
	v, _ := entry.Field("event_type")
	require.Equal(t, string(domain.EventOrderCreated), v)
}
