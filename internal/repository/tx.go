package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/ports/ordertx"
)

// TxRunner opens order transactions on the pool.
type TxRunner struct {
	db *pgxpool.Pool
}

// NewTxRunner creates a new TxRunner.
func NewTxRunner(db *pgxpool.Pool) *TxRunner {
	return &TxRunner{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *TxRunner) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return runTx(ctx, tx, fn)
}

func runTx(ctx context.Context, tx pgx.Tx, fn func(tx ordertx.Repository) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

var _ ordertx.Repository = (*TxRepo)(nil)

// Savepoint runs fn inside a nested transaction backed by a savepoint.
func (r *TxRepo) Savepoint(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	nested, err := r.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	return runTx(ctx, nested, fn)
}

// InsertOrder inserts o and fills its id and timestamps.
func (r *TxRepo) InsertOrder(ctx context.Context, o *domain.Order) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO orders (client_id, status, priority, pickup_address, delivery_address,
                            recipient_name, recipient_phone, recipient_email, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `, o.ClientID, string(o.Status), string(o.Priority), o.PickupAddress, o.DeliveryAddress,
		o.Recipient.Name, o.Recipient.Phone, o.Recipient.Email, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetOrderForUpdate locks and returns an order.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock order %d: %w", id, err)
	}
	return o, nil
}

// UpdateOrderStatus - update order status.
func (r *TxRepo) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return r.execOne(ctx, fmt.Sprintf("order %d", id), `
        UPDATE orders SET status = $2, updated_at = now() WHERE id = $1
    `, id, string(status))
}

// UpdateOrderPriority - update order priority.
func (r *TxRepo) UpdateOrderPriority(ctx context.Context, id int64, p domain.Priority) error {
	return r.execOne(ctx, fmt.Sprintf("order %d", id), `
        UPDATE orders SET priority = $2, updated_at = now() WHERE id = $1
    `, id, string(p))
}

// GetDriverForUpdate locks and returns a driver.
func (r *TxRepo) GetDriverForUpdate(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.tx.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.id = $1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock driver %d: %w", id, err)
	}
	return d, nil
}

// UpdateDriverStatus - update driver status.
func (r *TxRepo) UpdateDriverStatus(ctx context.Context, id int64, status domain.DriverStatus) error {
	return r.execOne(ctx, fmt.Sprintf("driver %d", id), `
        UPDATE drivers SET status = $2, updated_at = now() WHERE id = $1
    `, id, string(status))
}

// GetActiveAssignmentForUpdate locks and returns the non-cancelled assignment of an order.
func (r *TxRepo) GetActiveAssignmentForUpdate(ctx context.Context, orderID int64) (*domain.Assignment, error) {
	a, err := scanAssignment(r.tx.QueryRow(ctx, `
        SELECT `+assignmentColumns+`
        FROM order_assignments a
        WHERE a.order_id = $1 AND a.status <> 'cancelled'
        FOR UPDATE
    `, orderID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock active assignment of order %d: %w", orderID, err)
	}
	return a, nil
}

// InsertAssignment - insert a new assignment.
func (r *TxRepo) InsertAssignment(ctx context.Context, a *domain.Assignment) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO order_assignments (order_id, driver_id, assigned_by, status,
                                       estimated_pickup_time, estimated_delivery_time, assigned_at, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, a.OrderID, a.DriverID, a.AssignedBy, string(a.Status),
		a.EstimatedPickup, a.EstimatedDelivery, a.AssignedAt, a.Notes,
	).Scan(&a.ID)
	if err != nil {
		if IsUniqueViolation(err, ActiveAssignmentConstraint) {
			return apperr.Conflict("order is already assigned")
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// CancelAssignment marks an assignment cancelled and appends adminNote to admin_notes.
func (r *TxRepo) CancelAssignment(ctx context.Context, id int64, adminNote string) error {
	return r.execOne(ctx, fmt.Sprintf("assignment %d", id), `
        UPDATE order_assignments
        SET status = 'cancelled',
            admin_notes = CASE
                WHEN $2 = '' THEN admin_notes
                WHEN admin_notes = '' THEN $2
                ELSE admin_notes || E'\n' || $2
            END
        WHERE id = $1
    `, id, adminNote)
}

// MarkAssignmentAccepted - pending assignment becomes accepted.
func (r *TxRepo) MarkAssignmentAccepted(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, fmt.Sprintf("assignment %d", id), `
        UPDATE order_assignments SET status = 'accepted', accepted_at = $2 WHERE id = $1
    `, id, at)
}

// MarkAssignmentStarted - assignment becomes in_progress with the pickup time stamped.
func (r *TxRepo) MarkAssignmentStarted(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, fmt.Sprintf("assignment %d", id), `
        UPDATE order_assignments
        SET status = 'in_progress',
            started_at = $2,
            actual_pickup_time = $2,
            accepted_at = COALESCE(accepted_at, $2)
        WHERE id = $1
    `, id, at)
}

// MarkAssignmentCompleted - assignment becomes completed with the delivery time stamped.
func (r *TxRepo) MarkAssignmentCompleted(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, fmt.Sprintf("assignment %d", id), `
        UPDATE order_assignments
        SET status = 'completed', completed_at = $2, actual_delivery_time = $2
        WHERE id = $1
    `, id, at)
}

// AppendHistory inserts a status history row.
func (r *TxRepo) AppendHistory(ctx context.Context, h *domain.StatusHistory) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO order_status_history (order_id, status, actor_id, actor_type, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `, h.OrderID, string(h.Status), h.ActorID, string(h.ActorType), h.Notes, h.CreatedAt).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("append history of order %d: %w", h.OrderID, err)
	}
	return nil
}

// UpsertProofOfDelivery stores the proof of delivery of an order, replacing any previous one.
func (r *TxRepo) UpsertProofOfDelivery(ctx context.Context, p *domain.ProofOfDelivery) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO proof_of_delivery (order_id, assignment_id, recipient_name, signature_ref, photo_ref, notes, delivered_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (order_id) DO UPDATE
        SET assignment_id  = EXCLUDED.assignment_id,
            recipient_name = EXCLUDED.recipient_name,
            signature_ref  = EXCLUDED.signature_ref,
            photo_ref      = EXCLUDED.photo_ref,
            notes          = EXCLUDED.notes,
            delivered_at   = EXCLUDED.delivered_at
        RETURNING id
    `, p.OrderID, p.AssignmentID, p.RecipientName, p.SignatureRef, p.PhotoRef, p.Notes, p.DeliveredAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("upsert proof of delivery of order %d: %w", p.OrderID, err)
	}
	return nil
}

func (r *TxRepo) execOne(ctx context.Context, what, q string, args ...any) error {
	ct, err := r.tx.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s not found", what)
	}
	return nil
}
