package orders

import (
	"context"
	"strings"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/logx"
	"order-service/internal/ports/ordertx"
)

// CreateInput is a new order request.
type CreateInput struct {
	ClientID        int64
	Priority        domain.Priority
	PickupAddress   domain.Address
	DeliveryAddress domain.Address
	Recipient       domain.Recipient
	Notes           string
}

// Create stores a pending order with its first history row and announces it.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (domain.Order, error) {
	switch {
	case actor.Role == domain.RoleClient:
		in.ClientID = actor.UserID
	case actor.Role.Operator():
		if in.ClientID == 0 {
			in.ClientID = actor.UserID
		}
	default:
		return domain.Order{}, apperr.Forbidden("insufficient permissions to create orders")
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if err := validateCreate(&in); err != nil {
		return domain.Order{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o := domain.Order{
		ClientID:        in.ClientID,
		Status:          domain.OrderPending,
		Priority:        in.Priority,
		PickupAddress:   in.PickupAddress,
		DeliveryAddress: in.DeliveryAddress,
		Recipient:       in.Recipient,
		Notes:           in.Notes,
	}
	err := s.tx.WithTx(ctx, func(tx ordertx.Repository) error {
		if err := tx.InsertOrder(ctx, &o); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, domain.HistoryEntry(o.ID, o.Status, actor, "order created", s.now()))
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.metrics.StatusUpdate(string(domain.OrderPending))

	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.OrderID(o.ID),
		logx.Int64("client_id", o.ClientID),
		logx.String("priority", string(o.Priority)),
	)
	s.publish(ctx, domain.EventOrderCreated, o.ID, 0, actor, o.CreatedAt, events.OrderCreated{
		ClientID: o.ClientID,
		Priority: o.Priority,
		Pickup:   o.PickupAddress,
		Delivery: o.DeliveryAddress,
	})
	return o, nil
}

// Get returns an order visible to actor.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (domain.Order, error) {
	if id <= 0 {
		return domain.Order{}, apperr.Invalid("order id must be positive")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.reader.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o == nil {
		return domain.Order{}, apperr.NotFound("order not found")
	}
	if err := s.visible(ctx, actor, o); err != nil {
		return domain.Order{}, err
	}
	return *o, nil
}

// List returns orders matching f, narrowed to what actor may see.
func (s *Service) List(ctx context.Context, actor domain.Actor, f domain.OrderFilter) ([]domain.Order, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, apperr.Invalid("invalid status filter: %s", *f.Status)
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return nil, apperr.Invalid("invalid priority filter: %s", *f.Priority)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return nil, apperr.Invalid("offset must not be negative")
	}
	limit := defaultListLimit
	if f.Limit != nil {
		if *f.Limit <= 0 {
			return nil, apperr.Invalid("limit must be positive")
		}
		limit = min(*f.Limit, maxListLimit)
	}
	f.Limit = &limit

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	switch actor.Role {
	case domain.RoleAdmin, domain.RoleDispatcher:
	case domain.RoleClient:
		id := actor.UserID
		f.ClientID = &id
	case domain.RoleDriver:
		d, err := s.drivers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return []domain.Order{}, nil
		}
		f.DriverID = &d.ID
	default:
		return nil, apperr.Forbidden("insufficient permissions to list orders")
	}
	return s.reader.List(ctx, f)
}

// History returns the status history of an order visible to actor.
func (s *Service) History(ctx context.Context, actor domain.Actor, id int64) ([]domain.StatusHistory, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	h, err := s.reader.History(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = []domain.StatusHistory{}
	}
	return h, nil
}

func validateCreate(in *CreateInput) error {
	in.Recipient.Name = strings.TrimSpace(in.Recipient.Name)
	in.Recipient.Phone = strings.TrimSpace(in.Recipient.Phone)
	switch {
	case !in.Priority.Valid():
		return apperr.Invalid("invalid priority: %s", in.Priority)
	case strings.TrimSpace(in.PickupAddress.Line1) == "" || strings.TrimSpace(in.PickupAddress.City) == "":
		return apperr.Invalid("pickup_address requires line1 and city")
	case strings.TrimSpace(in.DeliveryAddress.Line1) == "" || strings.TrimSpace(in.DeliveryAddress.City) == "":
		return apperr.Invalid("delivery_address requires line1 and city")
	case in.Recipient.Name == "":
		return apperr.Invalid("recipient name is required")
	case !domain.ValidatePhone(in.Recipient.Phone):
		return apperr.Invalid("recipient phone must be in international format")
	}
	return nil
}
