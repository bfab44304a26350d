package shipment

import (
	"errors"
	"strings"
	"time"
)

// MovementState is the authoritative movement record for one shipment.
// Exactly one live instance exists per shipment; it is created on trip start,
// toggled by intercept/clear, and ignored once the shipment goes terminal.
type MovementState struct {
	ShipmentID string
	IsMoving   bool
	PausedBy   string // actor id, empty while moving
	PausedAt   *time.Time
	ResumedAt  *time.Time
	Reason     string
	UpdatedAt  time.Time
}

var (
	ErrEmptyShipmentID = errors.New("shipment_id cannot be empty")
	ErrEmptyActorID    = errors.New("actor_id cannot be empty")
)

// NewMovementState constructs the record a fresh trip starts with.
func NewMovementState(shipmentID string) (*MovementState, error) {
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return nil, ErrEmptyShipmentID
	}
	return &MovementState{
		ShipmentID: shipmentID,
		IsMoving:   true,
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

// Pause marks the shipment intercepted by actor. The caller guards the
// isMoving precondition; Pause only records the transition.
func (ms *MovementState) Pause(actorID, reason string, at time.Time) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ErrEmptyActorID
	}
	ms.IsMoving = false
	ms.PausedBy = actorID
	ms.PausedAt = &at
	ms.Reason = strings.TrimSpace(reason)
	ms.UpdatedAt = at
	return nil
}

// Resume clears the pause. PausedBy/PausedAt are kept for the last-pause
// audit view; ResumedAt records when movement restarted.
func (ms *MovementState) Resume(at time.Time) {
	ms.IsMoving = true
	ms.ResumedAt = &at
	ms.UpdatedAt = at
}

// Clone returns a copy safe to hand to readers outside the store lock.
func (ms *MovementState) Clone() *MovementState {
	out := *ms
	if ms.PausedAt != nil {
		t := *ms.PausedAt
		out.PausedAt = &t
	}
	if ms.ResumedAt != nil {
		t := *ms.ResumedAt
		out.ResumedAt = &t
	}
	return &out
}
