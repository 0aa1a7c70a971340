package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/logx"
	"order-service/internal/metrics"
	"order-service/internal/ports/ordertx"
)

const defaultBulkMaxItems = 100

// Options tunes the Service.
type Options struct {
	OperationTimeout time.Duration
	BulkMaxItems     int
}

// Service binds orders to drivers.
type Service struct {
	repo             TxRunner
	publisher        Publisher
	metrics          *metrics.Orders
	operationTimeout time.Duration
	bulkMaxItems     int
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates a new assignment Service.
func NewService(r TxRunner, p Publisher, m *metrics.Orders, opts Options, logger logx.Logger) *Service {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = 3 * time.Second
	}
	if opts.BulkMaxItems <= 0 {
		opts.BulkMaxItems = defaultBulkMaxItems
	}
	if p == nil {
		p = events.Nop()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		publisher:        p,
		metrics:          m,
		operationTimeout: opts.OperationTimeout,
		bulkMaxItems:     opts.BulkMaxItems,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Assign binds an order to an available driver.
func (s *Service) Assign(ctx context.Context, actor domain.Actor, req domain.AssignRequest) (domain.AssignResult, error) {
	if !actor.Role.Operator() {
		return domain.AssignResult{}, apperr.Forbidden("insufficient permissions to assign orders")
	}
	if err := validateAssignRequest(req); err != nil {
		return domain.AssignResult{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res domain.AssignResult
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		var err error
		res, err = s.assignTx(ctx, tx, actor, req, s.now())
		return err
	})
	if err != nil {
		s.metrics.Assignment("assign", resultLabel(err))
		return domain.AssignResult{}, err
	}
	s.metrics.Assignment("assign", "ok")

	s.logger.Info("order assigned",
		logx.String("event", "order_assigned"),
		logx.OrderID(res.OrderID),
		logx.DriverID(res.DriverID),
		logx.Int64("assignment_id", res.AssignmentID),
		logx.Int64("actor_id", actor.UserID),
	)
	s.publishAssigned(ctx, actor, req, res)
	return res, nil
}

// assignTx checks, in order: order exists, order is assignable, order has no live assignment,
// driver exists, driver is eligible. Then it writes the ledger, the gate and the history.
func (s *Service) assignTx(ctx context.Context, tx ordertx.Repository, actor domain.Actor, req domain.AssignRequest, now time.Time) (domain.AssignResult, error) {
	order, err := tx.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if order == nil {
		return domain.AssignResult{}, apperr.NotFound("order not found")
	}
	if !order.Status.Assignable() {
		return domain.AssignResult{}, apperr.Conflict("order cannot be assigned in status %s", order.Status)
	}

	active, err := tx.GetActiveAssignmentForUpdate(ctx, order.ID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if active != nil {
		return domain.AssignResult{}, apperr.Conflict("order is already assigned")
	}

	driver, err := tx.GetDriverForUpdate(ctx, req.DriverID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if driver == nil {
		return domain.AssignResult{}, apperr.NotFound("driver not found")
	}
	if !driver.Eligible() {
		return domain.AssignResult{}, apperr.Conflict("driver is not available")
	}

	a := &domain.Assignment{
		OrderID:           order.ID,
		DriverID:          driver.ID,
		AssignedBy:        actor.UserID,
		Status:            domain.AssignmentPending,
		EstimatedPickup:   req.EstimatedPickup,
		EstimatedDelivery: req.EstimatedDelivery,
		AssignedAt:        now,
		Notes:             req.Notes,
	}
	if err := tx.InsertAssignment(ctx, a); err != nil {
		return domain.AssignResult{}, err
	}
	if err := tx.UpdateOrderStatus(ctx, order.ID, domain.OrderPickupScheduled); err != nil {
		return domain.AssignResult{}, err
	}
	if err := tx.UpdateDriverStatus(ctx, driver.ID, domain.DriverBusy); err != nil {
		return domain.AssignResult{}, err
	}

	notes := fmt.Sprintf("assigned to driver %d", driver.ID)
	if req.Notes != "" {
		notes += ": " + req.Notes
	}
	if err := tx.AppendHistory(ctx, domain.HistoryEntry(order.ID, domain.OrderPickupScheduled, actor, notes, now)); err != nil {
		return domain.AssignResult{}, err
	}

	return domain.AssignResult{
		AssignmentID: a.ID,
		OrderID:      order.ID,
		DriverID:     driver.ID,
		OrderStatus:  domain.OrderPickupScheduled,
		AssignedAt:   now,
	}, nil
}

// BulkAssign runs Assign for every item inside one transaction. Each item has its own savepoint:
// a failing item is rolled back alone and reported in Failed.
func (s *Service) BulkAssign(ctx context.Context, actor domain.Actor, items []domain.AssignRequest) (domain.BulkAssignResult, error) {
	if !actor.Role.Operator() {
		return domain.BulkAssignResult{}, apperr.Forbidden("insufficient permissions to assign orders")
	}
	if len(items) == 0 {
		return domain.BulkAssignResult{}, apperr.Invalid("assignments must contain at least one item")
	}
	if len(items) > s.bulkMaxItems {
		return domain.BulkAssignResult{}, apperr.Invalid("assignments must contain at most %d items", s.bulkMaxItems)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out       domain.BulkAssignResult
		succeeded []domain.AssignRequest // parallel to out.Successful
	)
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		out = domain.BulkAssignResult{}
		succeeded = succeeded[:0]
		now := s.now()
		for _, item := range items {
			if err := validateAssignRequest(item); err != nil {
				out.Failed = append(out.Failed, failure(item, err))
				continue
			}
			var res domain.AssignResult
			err := tx.Savepoint(ctx, func(sp ordertx.Repository) error {
				var err error
				res, err = s.assignTx(ctx, sp, actor, item, now)
				return err
			})
			switch {
			case err == nil:
				out.Successful = append(out.Successful, res)
				succeeded = append(succeeded, item)
			case apperr.Business(err):
				out.Failed = append(out.Failed, failure(item, err))
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.Assignment("bulk_assign", resultLabel(err))
		return domain.BulkAssignResult{}, err
	}
	s.metrics.Assignment("bulk_assign", "ok")

	for range out.Successful {
		s.metrics.BulkItem("successful")
	}
	for range out.Failed {
		s.metrics.BulkItem("failed")
	}

	s.logger.Info("bulk assignment finished",
		logx.String("event", "bulk_assign_finished"),
		logx.Int("requested", len(items)),
		logx.Int("successful", len(out.Successful)),
		logx.Int("failed", len(out.Failed)),
		logx.Int64("actor_id", actor.UserID),
	)

	for i, res := range out.Successful {
		s.publishAssigned(ctx, actor, succeeded[i], res)
	}
	return out, nil
}

// EmergencyReassign cancels the live assignment of an order and binds it to another driver.
func (s *Service) EmergencyReassign(ctx context.Context, actor domain.Actor, req domain.EmergencyReassignRequest) (domain.EmergencyReassignResult, error) {
	if !actor.Role.Operator() {
		return domain.EmergencyReassignResult{}, apperr.Forbidden("insufficient permissions to reassign orders")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	switch {
	case req.OrderID <= 0:
		return domain.EmergencyReassignResult{}, apperr.Invalid("order_id must be positive")
	case req.NewDriverID <= 0:
		return domain.EmergencyReassignResult{}, apperr.Invalid("new_driver_id must be positive")
	case req.Reason == "":
		return domain.EmergencyReassignResult{}, apperr.Invalid("reason is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res domain.EmergencyReassignResult
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		now := s.now()

		order, err := tx.GetOrderForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order not found")
		}
		if order.Status.Terminal() {
			return apperr.Conflict("order cannot be reassigned in status %s", order.Status)
		}

		current, err := tx.GetActiveAssignmentForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		if current != nil {
			if !current.Status.Live() {
				return apperr.Conflict("assignment cannot be reassigned in status %s", current.Status)
			}
			if current.DriverID == req.NewDriverID {
				return apperr.Conflict("order is already assigned to this driver")
			}
		}

		driver, err := tx.GetDriverForUpdate(ctx, req.NewDriverID)
		if err != nil {
			return err
		}
		if driver == nil {
			return apperr.NotFound("driver not found")
		}
		if !driver.Eligible() {
			return apperr.Conflict("driver is not available")
		}

		res = domain.EmergencyReassignResult{
			OrderID:      order.ID,
			NewDriverID:  driver.ID,
			Priority:     order.Priority,
			ReassignedAt: now,
		}

		if current != nil {
			if err := tx.CancelAssignment(ctx, current.ID, "emergency reassignment: "+req.Reason); err != nil {
				return err
			}
			if err := tx.UpdateDriverStatus(ctx, current.DriverID, domain.DriverAvailable); err != nil {
				return err
			}
			prevDriver, prevAssignment := current.DriverID, current.ID
			res.PreviousDriverID = &prevDriver
			res.PreviousAssignmentID = &prevAssignment
		}

		a := &domain.Assignment{
			OrderID:    order.ID,
			DriverID:   driver.ID,
			AssignedBy: actor.UserID,
			Status:     domain.AssignmentPending,
			AssignedAt: now,
			Notes:      req.Reason,
		}
		if current != nil {
			a.EstimatedPickup = current.EstimatedPickup
			a.EstimatedDelivery = current.EstimatedDelivery
		}
		if err := tx.InsertAssignment(ctx, a); err != nil {
			return err
		}
		if err := tx.UpdateDriverStatus(ctx, driver.ID, domain.DriverBusy); err != nil {
			return err
		}
		res.AssignmentID = a.ID

		if req.Urgent && order.Priority != domain.PriorityUrgent {
			if err := tx.UpdateOrderPriority(ctx, order.ID, domain.PriorityUrgent); err != nil {
				return err
			}
			res.Priority = domain.PriorityUrgent
		}

		status := order.Status
		if status.Assignable() && status != domain.OrderPickupScheduled {
			status = domain.OrderPickupScheduled
			if err := tx.UpdateOrderStatus(ctx, order.ID, status); err != nil {
				return err
			}
		}

		notes := fmt.Sprintf("emergency reassignment to driver %d: %s", driver.ID, req.Reason)
		return tx.AppendHistory(ctx, domain.HistoryEntry(order.ID, status, actor, notes, now))
	})
	if err != nil {
		s.metrics.Assignment("emergency_reassign", resultLabel(err))
		return domain.EmergencyReassignResult{}, err
	}
	s.metrics.Assignment("emergency_reassign", "ok")

	fields := []logx.Field{
		logx.String("event", "emergency_reassigned"),
		logx.OrderID(res.OrderID),
		logx.Int64("new_driver_id", res.NewDriverID),
		logx.Int64("actor_id", actor.UserID),
		logx.Bool("urgent", req.Urgent),
	}
	if res.PreviousDriverID != nil {
		fields = append(fields, logx.Int64("previous_driver_id", *res.PreviousDriverID))
	}
	s.logger.Warn("order reassigned", fields...)

	s.publish(ctx, domain.EventOrderEmergencyReassigned, res.OrderID, res.NewDriverID, actor, res.ReassignedAt, events.Reassigned{
		AssignmentID:     res.AssignmentID,
		PreviousDriverID: res.PreviousDriverID,
		NewDriverID:      res.NewDriverID,
		Reason:           req.Reason,
		Priority:         res.Priority,
	})
	return res, nil
}

// Accept moves the pending assignment of an order to accepted on behalf of its driver.
func (s *Service) Accept(ctx context.Context, actor domain.Actor, orderID int64) (domain.AcceptResult, error) {
	if actor.Role != domain.RoleDriver {
		return domain.AcceptResult{}, apperr.Forbidden("only the assigned driver can accept an order")
	}
	if orderID <= 0 {
		return domain.AcceptResult{}, apperr.Invalid("order_id must be positive")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res domain.AcceptResult
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		a, err := s.lockOwnAssignment(ctx, tx, actor, orderID)
		if err != nil {
			return err
		}
		if a.Status != domain.AssignmentPending {
			return apperr.Conflict("assignment cannot be accepted in status %s", a.Status)
		}
		now := s.now()
		if err := tx.MarkAssignmentAccepted(ctx, a.ID, now); err != nil {
			return err
		}
		res = domain.AcceptResult{AssignmentID: a.ID, OrderID: orderID, DriverID: a.DriverID, AcceptedAt: now}
		return nil
	})
	if err != nil {
		s.metrics.Assignment("accept", resultLabel(err))
		return domain.AcceptResult{}, err
	}
	s.metrics.Assignment("accept", "ok")

	s.logger.Info("assignment accepted",
		logx.String("event", "assignment_accepted"),
		logx.OrderID(res.OrderID),
		logx.DriverID(res.DriverID),
	)
	s.publish(ctx, domain.EventAssignmentAccepted, res.OrderID, res.DriverID, actor, res.AcceptedAt, events.Assigned{
		AssignmentID: res.AssignmentID,
		DriverID:     res.DriverID,
	})
	return res, nil
}

// CompleteDelivery stores the proof of delivery and closes the assignment. Repeating it for a
// completed assignment only replaces the stored proof.
func (s *Service) CompleteDelivery(ctx context.Context, actor domain.Actor, pod domain.ProofOfDelivery) (domain.CompletionResult, error) {
	if actor.Role != domain.RoleDriver && !actor.Role.Operator() {
		return domain.CompletionResult{}, apperr.Forbidden("insufficient permissions to complete delivery")
	}
	if pod.OrderID <= 0 {
		return domain.CompletionResult{}, apperr.Invalid("order_id must be positive")
	}
	if strings.TrimSpace(pod.RecipientName) == "" && pod.SignatureRef == "" && pod.PhotoRef == "" {
		return domain.CompletionResult{}, apperr.Invalid("proof of delivery requires a recipient name, signature or photo")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		res      domain.CompletionResult
		previous domain.OrderStatus
		repeated bool
	)
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		now := s.now()

		order, err := tx.GetOrderForUpdate(ctx, pod.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order not found")
		}
		a, err := tx.GetActiveAssignmentForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		if a == nil {
			return apperr.NotFound("assignment not found")
		}
		if actor.Role == domain.RoleDriver {
			if err := s.checkDriverOwns(ctx, tx, actor, a); err != nil {
				return err
			}
		}

		proof := pod
		proof.AssignmentID = a.ID
		if proof.DeliveredAt.IsZero() {
			proof.DeliveredAt = now
		}
		if err := tx.UpsertProofOfDelivery(ctx, &proof); err != nil {
			return err
		}
		res = domain.CompletionResult{
			OrderID:      order.ID,
			AssignmentID: a.ID,
			DriverID:     a.DriverID,
			ProofID:      proof.ID,
			CompletedAt:  now,
		}

		if a.Status == domain.AssignmentCompleted {
			repeated = true
			if a.CompletedAt != nil {
				res.CompletedAt = *a.CompletedAt
			}
			return nil
		}
		if order.Status.Terminal() {
			return apperr.Conflict("order cannot be delivered in status %s", order.Status)
		}
		previous = order.Status

		if err := tx.MarkAssignmentCompleted(ctx, a.ID, now); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, order.ID, domain.OrderDelivered); err != nil {
			return err
		}
		if err := tx.UpdateDriverStatus(ctx, a.DriverID, domain.DriverAvailable); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, domain.HistoryEntry(order.ID, domain.OrderDelivered, actor, "proof of delivery uploaded", now))
	})
	if err != nil {
		s.metrics.Assignment("complete", resultLabel(err))
		return domain.CompletionResult{}, err
	}
	if repeated {
		s.logger.Info("proof of delivery replaced",
			logx.OrderID(res.OrderID),
			logx.Int64("assignment_id", res.AssignmentID),
		)
		return res, nil
	}
	s.metrics.Assignment("complete", "ok")
	s.metrics.StatusUpdate(string(domain.OrderDelivered))

	s.logger.Info("order delivered",
		logx.String("event", "order_delivered"),
		logx.OrderID(res.OrderID),
		logx.DriverID(res.DriverID),
	)
	s.publish(ctx, domain.EventOrderDelivered, res.OrderID, res.DriverID, actor, res.CompletedAt, events.StatusUpdated{
		PreviousStatus: previous,
		Status:         domain.OrderDelivered,
	})
	return res, nil
}

func (s *Service) lockOwnAssignment(ctx context.Context, tx ordertx.Repository, actor domain.Actor, orderID int64) (*domain.Assignment, error) {
	order, err := tx.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}
	a, err := tx.GetActiveAssignmentForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("assignment not found")
	}
	if err := s.checkDriverOwns(ctx, tx, actor, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) checkDriverOwns(ctx context.Context, tx ordertx.Repository, actor domain.Actor, a *domain.Assignment) error {
	d, err := tx.GetDriverForUpdate(ctx, a.DriverID)
	if err != nil {
		return err
	}
	if d == nil || d.UserID != actor.UserID {
		return apperr.Forbidden("order is not assigned to you")
	}
	return nil
}

func (s *Service) publishAssigned(ctx context.Context, actor domain.Actor, req domain.AssignRequest, res domain.AssignResult) {
	s.publish(ctx, domain.EventOrderAssignedToDriver, res.OrderID, res.DriverID, actor, res.AssignedAt, events.Assigned{
		AssignmentID:      res.AssignmentID,
		DriverID:          res.DriverID,
		EstimatedPickup:   req.EstimatedPickup,
		EstimatedDelivery: req.EstimatedDelivery,
	})
}

// publish runs after commit; failures are logged and counted only.
func (s *Service) publish(ctx context.Context, typ domain.EventType, orderID, driverID int64, actor domain.Actor, at time.Time, payload any) {
	e, err := events.New(typ, orderID, at, payload)
	if err == nil {
		pctx, cancel := events.AfterCommit(ctx)
		err = s.publisher.Publish(pctx, e.WithDriver(driverID).WithActor(actor.UserID))
		cancel()
	}
	if err != nil {
		s.metrics.PublishFailure(string(typ))
		s.logger.Error("event publish failed",
			logx.String("event", "event_publish_failed"),
			logx.String("event_type", string(typ)),
			logx.OrderID(orderID),
			logx.Err(err),
		)
	}
}

func validateAssignRequest(req domain.AssignRequest) error {
	switch {
	case req.OrderID <= 0:
		return apperr.Invalid("order_id must be positive")
	case req.DriverID <= 0:
		return apperr.Invalid("driver_id must be positive")
	case req.EstimatedPickup != nil && req.EstimatedDelivery != nil && req.EstimatedDelivery.Before(*req.EstimatedPickup):
		return apperr.Invalid("estimated_delivery_time must not be before estimated_pickup_time")
	}
	return nil
}

func failure(item domain.AssignRequest, err error) domain.BulkFailure {
	return domain.BulkFailure{
		OrderID:  item.OrderID,
		DriverID: item.DriverID,
		Reason:   apperr.Message(err, "internal error"),
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return "invalid"
	case errors.Is(err, apperr.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
