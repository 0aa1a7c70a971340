package handlers

import (
	"time"

	"order-service/internal/domain"
)

type recipientDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type createOrderRequest struct {
	ClientID        int64           `json:"client_id,omitempty"`
	Priority        domain.Priority `json:"priority,omitempty"`
	PickupAddress   domain.Address  `json:"pickup_address"`
	DeliveryAddress domain.Address  `json:"delivery_address"`
	Recipient       recipientDTO    `json:"recipient"`
	Notes           string          `json:"notes,omitempty"`
}

type orderDTO struct {
	ID              int64              `json:"id"`
	ClientID        int64              `json:"client_id"`
	Status          domain.OrderStatus `json:"status"`
	Priority        domain.Priority    `json:"priority"`
	PickupAddress   domain.Address     `json:"pickup_address"`
	DeliveryAddress domain.Address     `json:"delivery_address"`
	Recipient       recipientDTO       `json:"recipient"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type historyDTO struct {
	ID        int64              `json:"id"`
	Status    domain.OrderStatus `json:"status"`
	ActorID   *int64             `json:"actor_id,omitempty"`
	ActorType domain.ActorType   `json:"actor_type"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
	Notes  string             `json:"notes,omitempty"`
}

type statusChangeDTO struct {
	OrderID        int64              `json:"order_id"`
	PreviousStatus domain.OrderStatus `json:"previous_status"`
	Status         domain.OrderStatus `json:"status"`
	DriverID       *int64             `json:"driver_id,omitempty"`
	ChangedAt      time.Time          `json:"changed_at"`
}

type assignRequest struct {
	DriverID          int64      `json:"driver_id"`
	EstimatedPickup   *time.Time `json:"estimated_pickup_time,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery_time,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

type bulkItem struct {
	OrderID int64 `json:"order_id"`
	assignRequest
}

type bulkAssignRequest struct {
	Assignments []bulkItem `json:"assignments"`
}

type assignmentDTO struct {
	AssignmentID int64              `json:"assignment_id"`
	OrderID      int64              `json:"order_id"`
	DriverID     int64              `json:"driver_id"`
	OrderStatus  domain.OrderStatus `json:"order_status"`
	AssignedAt   time.Time          `json:"assigned_at"`
}

type bulkFailureDTO struct {
	OrderID  int64  `json:"order_id"`
	DriverID int64  `json:"driver_id"`
	Reason   string `json:"reason"`
}

type bulkAssignDTO struct {
	Total           int              `json:"total"`
	SuccessfulCount int              `json:"successful_count"`
	FailedCount     int              `json:"failed_count"`
	Successful      []assignmentDTO  `json:"successful"`
	Failed          []bulkFailureDTO `json:"failed"`
}

type emergencyRequest struct {
	NewDriverID int64  `json:"new_driver_id"`
	Reason      string `json:"reason"`
	Urgent      bool   `json:"urgent,omitempty"`
}

type emergencyDTO struct {
	OrderID          int64           `json:"order_id"`
	PreviousDriverID *int64          `json:"previous_driver_id,omitempty"`
	NewDriverID      int64           `json:"new_driver_id"`
	AssignmentID     int64           `json:"assignment_id"`
	Priority         domain.Priority `json:"priority"`
	ReassignedAt     time.Time       `json:"reassigned_at"`
}

type acceptDTO struct {
	AssignmentID int64     `json:"assignment_id"`
	OrderID      int64     `json:"order_id"`
	DriverID     int64     `json:"driver_id"`
	AcceptedAt   time.Time `json:"accepted_at"`
}

type proofRequest struct {
	RecipientName string `json:"recipient_name,omitempty"`
	SignatureRef  string `json:"signature_ref,omitempty"`
	PhotoRef      string `json:"photo_ref,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type completionDTO struct {
	OrderID      int64     `json:"order_id"`
	AssignmentID int64     `json:"assignment_id"`
	DriverID     int64     `json:"driver_id"`
	ProofID      int64     `json:"proof_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

type driverDTO struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"user_id"`
	Name            string              `json:"name"`
	Phone           string              `json:"phone"`
	Status          domain.DriverStatus `json:"status"`
	VehicleType     domain.VehicleType  `json:"vehicle_type"`
	VehiclePlate    string              `json:"vehicle_plate,omitempty"`
	VehicleCapacity int                 `json:"vehicle_capacity"`
	Rating          float64             `json:"rating"`
	IsActive        bool                `json:"is_active"`
}

type createDriverRequest struct {
	UserID          int64               `json:"user_id"`
	Name            string              `json:"name"`
	Phone           string              `json:"phone"`
	Status          domain.DriverStatus `json:"status,omitempty"`
	VehicleType     domain.VehicleType  `json:"vehicle_type"`
	VehiclePlate    string              `json:"vehicle_plate,omitempty"`
	VehicleCapacity int                 `json:"vehicle_capacity,omitempty"`
}

type driverStatusRequest struct {
	Status domain.DriverStatus `json:"status"`
}

type integrationDTO struct {
	System      domain.ExternalSystem `json:"system"`
	Status      domain.SyncStatus     `json:"status"`
	Attempts    int                   `json:"attempts"`
	ExternalRef string                `json:"external_ref,omitempty"`
	LastError   string                `json:"last_error,omitempty"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
