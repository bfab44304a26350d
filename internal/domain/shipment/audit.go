package shipment

import (
	"errors"
	"strings"
	"time"
)

// Action identifies a mutating movement-control call.
type Action string

const (
	ActionStart      Action = "START"
	ActionIntercept  Action = "INTERCEPT"
	ActionClear      Action = "CLEAR"
	ActionReroute    Action = "REROUTE"
	ActionReposition Action = "REPOSITION"
)

var ErrInvalidAction = errors.New("invalid audit action")

// Valid reports whether action is a known audit action.
func (action Action) Valid() bool {
	switch action {
	case ActionStart, ActionIntercept, ActionClear, ActionReroute, ActionReposition:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Action.
func (action Action) String() string {
	return string(action)
}

// AuditEntry is one append-only row of the movement audit trail; one entry is
// written per mutating Movement Control API call.
type AuditEntry struct {
	ID         string
	ShipmentID string
	ActorID    string
	Action     Action
	Reason     string
	CreatedAt  time.Time
}

// NewAuditEntry constructs and validates an audit entry.
func NewAuditEntry(shipmentID, actorID string, action Action, reason string) (*AuditEntry, error) {
	entry := &AuditEntry{
		ShipmentID: strings.TrimSpace(shipmentID),
		ActorID:    strings.TrimSpace(actorID),
		Action:     action,
		Reason:     strings.TrimSpace(reason),
		CreatedAt:  time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Validate checks invariants of the AuditEntry.
func (entry *AuditEntry) Validate() error {
	if entry.ShipmentID == "" {
		return ErrEmptyShipmentID
	}
	if entry.ActorID == "" {
		return ErrEmptyActorID
	}
	if !entry.Action.Valid() {
		return ErrInvalidAction
	}
	return nil
}
