// README: Ride request aggregate and status definitions.
package ride

import (
	"time"

	"concierge/internal/types"
)

type Status string

const (
	StatusNone       Status = "none"
	StatusRequested  Status = "requested"
	StatusDispatched Status = "dispatched"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type RideRequest struct {
	ID            types.ID
	SessionID     types.ID
	RoomNumber    string
	GuestName     string
	Pickup        string
	Destination   string
	GuestCount    int
	Notes         string
	Status        Status
	StatusVersion int
	CreatedAt     time.Time
	DispatchedAt  *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  *string
}

type Event struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	CreatedAt  time.Time
}

// AllowedTransitions represents the ride request state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusRequested:  {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
