package domain

import "time"

// Address is a pickup or delivery location.
type Address struct {
	Line1      string   `json:"line1"`
	Line2      string   `json:"line2,omitempty"`
	City       string   `json:"city"`
	PostalCode string   `json:"postal_code,omitempty"`
	Country    string   `json:"country,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// Recipient is the person receiving the parcel.
type Recipient struct {
	Name  string
	Phone string
	Email string
}

// Order is a delivery request moving through the lifecycle.
type Order struct {
	ID              int64
	ClientID        int64
	Status          OrderStatus
	Priority        Priority
	PickupAddress   Address
	DeliveryAddress Address
	Recipient       Recipient
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderFilter narrows order listings. Nil fields are ignored.
type OrderFilter struct {
	Status   *OrderStatus
	Priority *Priority
	DriverID *int64
	ClientID *int64
	Limit    *int
	Offset   *int
}

// StatusChange is a general status update request.
type StatusChange struct {
	OrderID int64
	Status  OrderStatus
	Notes   string
}

// StatusChangeResult describes an applied status update.
type StatusChangeResult struct {
	OrderID        int64
	PreviousStatus OrderStatus
	Status         OrderStatus
	DriverID       *int64
	ChangedAt      time.Time
}
