package domain

import "time"

type (
	// ExternalSystem identifies a downstream system an order is synced to.
	ExternalSystem string
	// SyncStatus is the outcome of the last sync attempt.
	SyncStatus string
)

// External systems.
const (
	SystemWMS ExternalSystem = "wms"
	SystemROS ExternalSystem = "ros"
	SystemCMS ExternalSystem = "cms"
)

// Sync statuses.
const (
	SyncPending   SyncStatus = "pending"
	SyncSucceeded SyncStatus = "succeeded"
	SyncFailed    SyncStatus = "failed"
)

// ExternalSystems lists the systems every order is synced to, in call order.
func ExternalSystems() []ExternalSystem {
	return []ExternalSystem{SystemWMS, SystemROS, SystemCMS}
}

// IntegrationSync is the sync state of one order in one external system.
type IntegrationSync struct {
	OrderID     int64
	System      ExternalSystem
	Status      SyncStatus
	Attempts    int
	ExternalRef string
	LastError   string
	UpdatedAt   time.Time
}
