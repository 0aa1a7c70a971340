package repository

import (
	"fmt"
	"strings"

	"order-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `o.id, o.client_id, o.status, o.priority, o.pickup_address, o.delivery_address,
	o.recipient_name, o.recipient_phone, o.recipient_email, o.notes, o.created_at, o.updated_at`

const driverColumns = `d.id, d.user_id, d.name, d.phone, d.status, d.vehicle_type, d.vehicle_plate,
	d.vehicle_capacity, d.rating, d.is_active, d.created_at, d.updated_at`

const assignmentColumns = `a.id, a.order_id, a.driver_id, a.assigned_by, a.status,
	a.estimated_pickup_time, a.estimated_delivery_time, a.actual_pickup_time, a.actual_delivery_time,
	a.assigned_at, a.accepted_at, a.started_at, a.completed_at, a.notes, a.admin_notes`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.ClientID, &o.Status, &o.Priority, &o.PickupAddress, &o.DeliveryAddress,
		&o.Recipient.Name, &o.Recipient.Phone, &o.Recipient.Email, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var d domain.Driver
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Phone, &d.Status, &d.VehicleType, &d.VehiclePlate,
		&d.VehicleCapacity, &d.Rating, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var a domain.Assignment
	err := row.Scan(&a.ID, &a.OrderID, &a.DriverID, &a.AssignedBy, &a.Status,
		&a.EstimatedPickup, &a.EstimatedDelivery, &a.ActualPickup, &a.ActualDelivery,
		&a.AssignedAt, &a.AcceptedAt, &a.StartedAt, &a.CompletedAt, &a.Notes, &a.AdminNotes)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// whereBuilder accumulates positional conditions for list queries.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *whereBuilder) page(limit, offset *int) string {
	var b strings.Builder
	if limit != nil {
		w.args = append(w.args, *limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(w.args))
	}
	if offset != nil {
		w.args = append(w.args, *offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(w.args))
	}
	return b.String()
}

func capacity(limit *int) int {
	if limit != nil && *limit > 0 {
		return *limit
	}
	return 0
}
