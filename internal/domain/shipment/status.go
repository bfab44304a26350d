package shipment

import (
	"errors"
	"strings"
)

// Status is a shipment status as stored in the `shipments` table.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusPickedUp    Status = "PICKED_UP"
	StatusInTransit   Status = "IN_TRANSIT"
	StatusIntercepted Status = "INTERCEPTED"
	StatusDelivered   Status = "DELIVERED"
	StatusCancelled   Status = "CANCELLED"
	StatusFailed      Status = "FAILED"
)

var ErrInvalidStatus = errors.New("invalid shipment status")

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed shipment status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusPickedUp, StatusInTransit, StatusIntercepted,
		StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// CanTransitionTo specifies if the status can transition to the next status.
func (status Status) CanTransitionTo(next Status) bool {
	switch status {
	case StatusPending:
		return next == StatusPickedUp || next == StatusInTransit || next == StatusCancelled

	case StatusPickedUp:
		return next == StatusInTransit || next == StatusCancelled

	case StatusInTransit:
		return next == StatusIntercepted || next == StatusDelivered ||
			next == StatusCancelled || next == StatusFailed

	case StatusIntercepted:
		return next == StatusInTransit || next == StatusCancelled || next == StatusFailed

	case StatusDelivered, StatusCancelled, StatusFailed:
		return false

	default:
		return false
	}
}

// Terminal indicates if the status is in a terminal state: no further
// movement is possible and the shipment's simulator is torn down.
func (status Status) Terminal() bool {
	return status == StatusDelivered || status == StatusCancelled || status == StatusFailed
}

// CanStartTrip reports whether a trip may begin from this status.
func (status Status) CanStartTrip() bool {
	return status == StatusPending || status == StatusPickedUp
}
