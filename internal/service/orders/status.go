package orders

import (
	"context"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/logx"
	"order-service/internal/ports/ordertx"
)

// UpdateStatus moves an order to a new status on behalf of actor and keeps the assignment
// ledger and the driver gate in step with it.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, change domain.StatusChange) (domain.StatusChangeResult, error) {
	if change.OrderID <= 0 {
		return domain.StatusChangeResult{}, apperr.Invalid("order id must be positive")
	}
	if !change.Status.Valid() {
		return domain.StatusChangeResult{}, apperr.Invalid("invalid status: %s", change.Status)
	}
	if !actor.Role.Valid() {
		return domain.StatusChangeResult{}, apperr.Forbidden("insufficient permissions to update order status")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res domain.StatusChangeResult
	err := s.tx.WithTx(ctx, func(tx ordertx.Repository) error {
		now := s.now()

		order, err := tx.GetOrderForUpdate(ctx, change.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order not found")
		}
		if !domain.CanUpdateStatus(actor.Role, order.Status, change.Status) {
			return apperr.Forbidden("insufficient permissions to set status %s", change.Status)
		}

		active, err := tx.GetActiveAssignmentForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		switch actor.Role {
		case domain.RoleDriver:
			if active == nil {
				return apperr.Forbidden("order is not assigned to you")
			}
			d, err := tx.GetDriverForUpdate(ctx, active.DriverID)
			if err != nil {
				return err
			}
			if d == nil || d.UserID != actor.UserID {
				return apperr.Forbidden("order is not assigned to you")
			}
		case domain.RoleClient:
			if order.ClientID != actor.UserID {
				return apperr.Forbidden("order does not belong to you")
			}
		}

		if order.Status == change.Status {
			return apperr.Conflict("order is already in status %s", order.Status)
		}
		if s.strict && !domain.CanTransition(order.Status, change.Status) {
			return apperr.Conflict("invalid status transition from %s to %s", order.Status, change.Status)
		}

		if err := tx.UpdateOrderStatus(ctx, order.ID, change.Status); err != nil {
			return err
		}
		if err := applyLedger(ctx, tx, active, order.Status, change.Status, now); err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, domain.HistoryEntry(order.ID, change.Status, actor, change.Notes, now)); err != nil {
			return err
		}

		res = domain.StatusChangeResult{
			OrderID:        order.ID,
			PreviousStatus: order.Status,
			Status:         change.Status,
			ChangedAt:      now,
		}
		reopened := order.Status.Terminal() && !change.Status.Terminal()
		if active != nil && !reopened {
			driverID := active.DriverID
			res.DriverID = &driverID
		}
		return nil
	})
	if err != nil {
		return domain.StatusChangeResult{}, err
	}
	s.metrics.StatusUpdate(string(res.Status))

	s.logger.Info("order status updated",
		logx.String("event", "status_updated"),
		logx.OrderID(res.OrderID),
		logx.String("from", string(res.PreviousStatus)),
		logx.String("to", string(res.Status)),
		logx.Int64("actor_id", actor.UserID),
		logx.String("actor_role", string(actor.Role)),
	)

	var driverID int64
	if res.DriverID != nil {
		driverID = *res.DriverID
	}
	s.publish(ctx, domain.EventOrderStatusUpdated, res.OrderID, driverID, actor, res.ChangedAt, events.StatusUpdated{
		PreviousStatus: res.PreviousStatus,
		Status:         res.Status,
		Notes:          change.Notes,
	})
	return res, nil
}

// applyLedger mirrors an order status change on its live assignment and driver.
func applyLedger(ctx context.Context, tx ordertx.Repository, a *domain.Assignment, from, status domain.OrderStatus, now time.Time) error {
	if a == nil {
		return nil
	}
	if !a.Status.Live() {
		// A reopened order drops its finished assignment so it can be assigned again.
		if from.Terminal() && !status.Terminal() {
			return tx.CancelAssignment(ctx, a.ID, "order reopened as "+string(status))
		}
		return nil
	}
	switch status {
	case domain.OrderPickedUp:
		return tx.MarkAssignmentStarted(ctx, a.ID, now)
	case domain.OrderDelivered:
		if err := tx.MarkAssignmentCompleted(ctx, a.ID, now); err != nil {
			return err
		}
		return tx.UpdateDriverStatus(ctx, a.DriverID, domain.DriverAvailable)
	case domain.OrderCancelled, domain.OrderFailed, domain.OrderReturned:
		if err := tx.CancelAssignment(ctx, a.ID, "order "+string(status)); err != nil {
			return err
		}
		return tx.UpdateDriverStatus(ctx, a.DriverID, domain.DriverAvailable)
	}
	return nil
}
