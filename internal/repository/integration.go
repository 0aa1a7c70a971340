package repository

import (
	"context"
	"fmt"

	"order-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrationRepo stores the per-order sync state with external systems.
type IntegrationRepo struct{ db *pgxpool.Pool }

// NewIntegrationRepo creates a new IntegrationRepo.
func NewIntegrationRepo(db *pgxpool.Pool) *IntegrationRepo { return &IntegrationRepo{db: db} }

// Record upserts the sync state of one (order, system) pair and bumps its attempt counter.
func (r *IntegrationRepo) Record(ctx context.Context, s domain.IntegrationSync) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO order_integrations (order_id, system, status, attempts, external_ref, last_error, updated_at)
        VALUES ($1, $2, $3, 1, $4, $5, now())
        ON CONFLICT (order_id, system) DO UPDATE
        SET status       = EXCLUDED.status,
            attempts     = order_integrations.attempts + 1,
            external_ref = CASE WHEN EXCLUDED.external_ref = '' THEN order_integrations.external_ref
                                ELSE EXCLUDED.external_ref END,
            last_error   = EXCLUDED.last_error,
            updated_at   = now()
    `, s.OrderID, string(s.System), string(s.Status), s.ExternalRef, s.LastError)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("record %s sync of unknown order %d: %w", s.System, s.OrderID, err)
		}
		return fmt.Errorf("record %s sync of order %d: %w", s.System, s.OrderID, err)
	}
	return nil
}

// ListByOrder returns the sync state of every system for an order.
func (r *IntegrationRepo) ListByOrder(ctx context.Context, orderID int64) ([]domain.IntegrationSync, error) {
	return r.list(ctx, `WHERE order_id = $1 ORDER BY system`, orderID)
}

// ListFailed returns failed syncs with fewer than maxAttempts attempts, oldest first.
func (r *IntegrationRepo) ListFailed(ctx context.Context, maxAttempts, limit int) ([]domain.IntegrationSync, error) {
	return r.list(ctx, `WHERE status = 'failed' AND attempts < $1 ORDER BY updated_at LIMIT $2`, maxAttempts, limit)
}

func (r *IntegrationRepo) list(ctx context.Context, tail string, args ...any) ([]domain.IntegrationSync, error) {
	rows, err := r.db.Query(ctx, `
        SELECT order_id, system, status, attempts, external_ref, last_error, updated_at
        FROM order_integrations `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	var out []domain.IntegrationSync
	for rows.Next() {
		var s domain.IntegrationSync
		if err := rows.Scan(&s.OrderID, &s.System, &s.Status, &s.Attempts, &s.ExternalRef, &s.LastError, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
