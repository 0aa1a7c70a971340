package domain

// Role is the caller role issued by the auth service.
type Role string

// Known roles.
const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
	RoleClient     Role = "client"
)

// Valid checks if the Role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDispatcher, RoleDriver, RoleClient:
		return true
	default:
		return false
	}
}

// Operator reports whether the role may manage assignments for any order.
func (r Role) Operator() bool {
	return r == RoleAdmin || r == RoleDispatcher
}

// Actor is the authenticated identity behind a request.
type Actor struct {
	UserID int64
	Email  string
	Role   Role
}

// ActorType is the role recorded in the status history. System entries have no user.
type ActorType string

// ActorSystem marks history rows written by background processes.
const ActorSystem ActorType = "system"

// Type returns the history actor type for a.
func (a Actor) Type() ActorType {
	return ActorType(a.Role)
}
