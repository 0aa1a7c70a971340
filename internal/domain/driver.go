package domain

import (
	"regexp"
	"time"
)

type (
	// DriverStatus is the availability of a driver.
	DriverStatus string
	// VehicleType is the kind of vehicle a driver operates.
	VehicleType string
)

// Driver statuses.
const (
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
	DriverOffline   DriverStatus = "offline"
	DriverOnBreak   DriverStatus = "on_break"
	DriverSuspended DriverStatus = "suspended"
)

// Vehicle types.
const (
	VehicleBike  VehicleType = "bike"
	VehicleCar   VehicleType = "car"
	VehicleVan   VehicleType = "van"
	VehicleTruck VehicleType = "truck"
)

var allowedDriverStatuses = [...]DriverStatus{
	DriverAvailable, DriverBusy, DriverOffline, DriverOnBreak, DriverSuspended,
}

var allowedVehicleTypes = [...]VehicleType{
	VehicleBike, VehicleCar, VehicleVan, VehicleTruck,
}

// Valid checks if the DriverStatus is valid.
func (s DriverStatus) Valid() bool {
	for _, v := range allowedDriverStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the VehicleType is valid.
func (t VehicleType) Valid() bool {
	for _, v := range allowedVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Driver is a delivery driver. Its status is the gate against double booking.
type Driver struct {
	ID              int64
	UserID          int64
	Name            string
	Phone           string
	Status          DriverStatus
	VehicleType     VehicleType
	VehiclePlate    string
	VehicleCapacity int
	Rating          float64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Eligible reports whether the driver can take a new assignment.
func (d *Driver) Eligible() bool {
	return d != nil && d.IsActive && d.Status == DriverAvailable
}

// DriverFilter narrows driver listings.
type DriverFilter struct {
	Status *DriverStatus
	Limit  *int
	Offset *int
}

// DriverStatusChange is a direct driver status update.
type DriverStatusChange struct {
	DriverID int64
	Status   DriverStatus
}

var rePhone = regexp.MustCompile(`^\+[0-9]{10,15}$`)

// ValidatePhone validates the phone number format.
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
