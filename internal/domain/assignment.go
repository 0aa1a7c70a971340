package domain

import "time"

// AssignmentStatus is the state of a driver binding.
type AssignmentStatus string

// Assignment statuses.
const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

// Live reports whether the assignment still holds its driver.
func (s AssignmentStatus) Live() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentInProgress:
		return true
	default:
		return false
	}
}

// Assignment binds one order to one driver.
type Assignment struct {
	ID                int64
	OrderID           int64
	DriverID          int64
	AssignedBy        int64
	Status            AssignmentStatus
	EstimatedPickup   *time.Time
	EstimatedDelivery *time.Time
	ActualPickup      *time.Time
	ActualDelivery    *time.Time
	AssignedAt        time.Time
	AcceptedAt        *time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	Notes             string
	AdminNotes        string
}

// AssignRequest is a single order → driver assignment.
type AssignRequest struct {
	OrderID           int64
	DriverID          int64
	EstimatedPickup   *time.Time
	EstimatedDelivery *time.Time
	Notes             string
}

// AssignResult describes a created assignment.
type AssignResult struct {
	AssignmentID int64
	OrderID      int64
	DriverID     int64
	OrderStatus  OrderStatus
	AssignedAt   time.Time
}

// BulkFailure is one rejected entry of a bulk assignment.
type BulkFailure struct {
	OrderID  int64
	DriverID int64
	Reason   string
}

// BulkAssignResult reports every attempted entry of a bulk assignment.
type BulkAssignResult struct {
	Successful []AssignResult
	Failed     []BulkFailure
}

// EmergencyReassignRequest replaces the driver of an order.
type EmergencyReassignRequest struct {
	OrderID     int64
	NewDriverID int64
	Reason      string
	Urgent      bool
}

// EmergencyReassignResult describes an emergency reassignment.
type EmergencyReassignResult struct {
	OrderID              int64
	PreviousDriverID     *int64
	PreviousAssignmentID *int64
	NewDriverID          int64
	AssignmentID         int64
	Priority             Priority
	ReassignedAt         time.Time
}

// ProofOfDelivery is the evidence uploaded when an order is handed over.
type ProofOfDelivery struct {
	ID            int64
	OrderID       int64
	AssignmentID  int64
	RecipientName string
	SignatureRef  string
	PhotoRef      string
	Notes         string
	DeliveredAt   time.Time
}

// AcceptResult describes an accepted assignment.
type AcceptResult struct {
	AssignmentID int64
	OrderID      int64
	DriverID     int64
	AcceptedAt   time.Time
}

// CompletionResult describes a completed delivery.
type CompletionResult struct {
	OrderID      int64
	AssignmentID int64
	DriverID     int64
	ProofID      int64
	CompletedAt  time.Time
}
