package repository

import (
	"context"
	"fmt"

	"order-service/internal/apperr"
	"order-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DriverRepo represents driver repository.
type DriverRepo struct{ db *pgxpool.Pool }

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db *pgxpool.Pool) *DriverRepo { return &DriverRepo{db: db} }

// Get - returns driver by its ID.
func (r *DriverRepo) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver %d: %w", id, err)
	}
	return d, nil
}

// GetByUserID returns the driver profile bound to an auth identity.
func (r *DriverRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers d WHERE d.user_id = $1`, userID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver by user %d: %w", userID, err)
	}
	return d, nil
}

// List returns drivers ordered by id.
func (r *DriverRepo) List(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error) {
	var w whereBuilder
	if f.Status != nil {
		w.add("d.status = $%d", string(*f.Status))
	}
	q := `SELECT ` + driverColumns + ` FROM drivers d` + w.sql() + ` ORDER BY d.id` + w.page(f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Driver, 0, capacity(f.Limit))
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Create - creates a new driver.
func (r *DriverRepo) Create(ctx context.Context, d *domain.Driver) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO drivers (user_id, name, phone, status, vehicle_type, vehicle_plate, vehicle_capacity, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, d.UserID, d.Name, d.Phone, string(d.Status), string(d.VehicleType), d.VehiclePlate, d.VehicleCapacity, d.IsActive,
	).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.Conflict("driver with this user or phone already exists")
		}
		return 0, fmt.Errorf("create driver: %w", err)
	}
	return id, nil
}
