package drivers

import (
	"context"
	"strings"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/events"
	"order-service/internal/logx"
	"order-service/internal/ports/ordertx"
)

// selfSettable are the statuses a driver may switch to on their own.
var selfSettable = map[domain.DriverStatus]struct{}{
	domain.DriverAvailable: {},
	domain.DriverOffline:   {},
	domain.DriverOnBreak:   {},
}

// Service coordinates driver business logic and orchestrates repository calls.
type Service struct {
	repo             driverRepository
	tx               txRunner
	publisher        events.Publisher
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService creates and configures a driver Service.
func NewService(r driverRepository, tx txRunner, p events.Publisher, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if p == nil {
		p = events.Nop()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		tx:               tx,
		publisher:        p,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// validateCreate validates a driver for creation.
func validateCreate(d *domain.Driver) error {
	if d == nil {
		return apperr.Invalid("driver is required")
	}
	d.Name = strings.TrimSpace(d.Name)
	if d.UserID <= 0 {
		return apperr.Invalid("user_id must be positive")
	}
	if d.Name == "" {
		return apperr.Invalid("name is required")
	}
	if !domain.ValidatePhone(d.Phone) {
		return apperr.Invalid("phone must be in international format")
	}
	if d.Status == "" {
		d.Status = domain.DriverOffline
	}
	if !d.Status.Valid() {
		return apperr.Invalid("invalid driver status: %s", d.Status)
	}
	if d.Status == domain.DriverBusy {
		return apperr.Invalid("a new driver cannot be busy")
	}
	if !d.VehicleType.Valid() {
		return apperr.Invalid("invalid vehicle type: %s", d.VehicleType)
	}
	if d.VehicleCapacity < 0 {
		return apperr.Invalid("vehicle_capacity must not be negative")
	}
	return nil
}

// Get retrieves a driver by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	if id <= 0 {
		return nil, apperr.Invalid("driver id must be positive")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("driver not found")
	}
	return d, nil
}

// ByUser returns the driver profile bound to an auth identity.
func (s *Service) ByUser(ctx context.Context, userID int64) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("driver profile not found")
	}
	return d, nil
}

// List returns drivers with optional status filter and pagination.
func (s *Service) List(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, apperr.Invalid("invalid status filter: %s", *f.Status)
	}
	if (f.Limit != nil && *f.Limit <= 0) || (f.Offset != nil && *f.Offset < 0) {
		return nil, apperr.Invalid("invalid pagination")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, f)
}

// Create persists a new driver and returns its generated ID.
func (s *Service) Create(ctx context.Context, actor domain.Actor, d *domain.Driver) (int64, error) {
	if !actor.Role.Operator() {
		return 0, apperr.Forbidden("insufficient permissions to register drivers")
	}
	if err := validateCreate(d); err != nil {
		return 0, err
	}
	d.IsActive = true
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Create(ctx, d)
}

// UpdateStatus changes a driver's status directly. Operators may set any status; a driver may
// switch itself between available, offline and on_break while not busy.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, change domain.DriverStatusChange) (*domain.Driver, error) {
	if change.DriverID <= 0 {
		return nil, apperr.Invalid("driver id must be positive")
	}
	if !change.Status.Valid() {
		return nil, apperr.Invalid("invalid driver status: %s", change.Status)
	}
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleDispatcher:
	case domain.RoleDriver:
		if _, ok := selfSettable[change.Status]; !ok {
			return nil, apperr.Forbidden("drivers cannot set status %s", change.Status)
		}
	default:
		return nil, apperr.Forbidden("insufficient permissions to update driver status")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		updated  domain.Driver
		previous domain.DriverStatus
	)
	err := s.tx.WithTx(ctx, func(tx ordertx.Repository) error {
		d, err := tx.GetDriverForUpdate(ctx, change.DriverID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.NotFound("driver not found")
		}
		if actor.Role == domain.RoleDriver {
			if d.UserID != actor.UserID {
				return apperr.Forbidden("drivers can only update their own status")
			}
			if d.Status == domain.DriverBusy {
				return apperr.Conflict("driver is busy with an active assignment")
			}
		}
		if d.Status == change.Status {
			updated = *d
			previous = d.Status
			return nil
		}
		if err := tx.UpdateDriverStatus(ctx, d.ID, change.Status); err != nil {
			return err
		}
		previous = d.Status
		updated = *d
		updated.Status = change.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	if previous == updated.Status {
		return &updated, nil
	}

	s.logger.Info("driver status updated",
		logx.String("event", "driver_status_updated"),
		logx.DriverID(updated.ID),
		logx.String("from", string(previous)),
		logx.String("to", string(updated.Status)),
		logx.Int64("actor_id", actor.UserID),
	)

	e, err := events.New(domain.EventDriverStatusUpdated, 0, s.now(), events.DriverStatusUpdated{
		PreviousStatus: previous,
		Status:         updated.Status,
	})
	if err == nil {
		pctx, cancel := events.AfterCommit(ctx)
		err = s.publisher.Publish(pctx, e.WithDriver(updated.ID).WithActor(actor.UserID))
		cancel()
	}
	if err != nil {
		s.logger.Error("event publish failed",
			logx.String("event", "event_publish_failed"),
			logx.String("event_type", string(domain.EventDriverStatusUpdated)),
			logx.DriverID(updated.ID),
			logx.Err(err),
		)
	}
	return &updated, nil
}
