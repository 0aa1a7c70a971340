package repository

import (
	"context"
	"fmt"

	"order-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepo represents the read side of orders and their history.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

// Get returns an order by id, or nil when it does not exist.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// List returns orders matching f, newest first.
func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	var w whereBuilder
	if f.Status != nil {
		w.add("o.status = $%d", string(*f.Status))
	}
	if f.Priority != nil {
		w.add("o.priority = $%d", string(*f.Priority))
	}
	if f.ClientID != nil {
		w.add("o.client_id = $%d", *f.ClientID)
	}
	if f.DriverID != nil {
		w.add(`EXISTS (SELECT 1 FROM order_assignments a
			WHERE a.order_id = o.id AND a.status <> 'cancelled' AND a.driver_id = $%d)`, *f.DriverID)
	}
	q := `SELECT ` + orderColumns + ` FROM orders o` + w.sql() + ` ORDER BY o.id DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Order, 0, capacity(f.Limit))
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// History returns the status history of an order, oldest first.
func (r *OrderRepo) History(ctx context.Context, orderID int64) ([]domain.StatusHistory, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, order_id, status, actor_id, actor_type, notes, created_at
        FROM order_status_history
        WHERE order_id = $1
        ORDER BY id
    `, orderID)
	if err != nil {
		return nil, fmt.Errorf("list history of order %d: %w", orderID, err)
	}
	defer rows.Close()

	var out []domain.StatusHistory
	for rows.Next() {
		var h domain.StatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.ActorID, &h.ActorType, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ActiveAssignment returns the non-cancelled assignment of an order, or nil.
func (r *OrderRepo) ActiveAssignment(ctx context.Context, orderID int64) (*domain.Assignment, error) {
	a, err := scanAssignment(r.db.QueryRow(ctx, `
        SELECT `+assignmentColumns+`
        FROM order_assignments a
        WHERE a.order_id = $1 AND a.status <> 'cancelled'
    `, orderID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active assignment of order %d: %w", orderID, err)
	}
	return a, nil
}
