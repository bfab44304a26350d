package ports

import (
	"context"

	"ship-track/internal/domain/geo"
	"ship-track/internal/domain/shipment"
)

// EventPublisher pushes wire messages to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// StartTripInput carries the parameters of a trip start. DurationDays may be
// fractional; zero means derive the duration from distance and average speed.
type StartTripInput struct {
	ShipmentID   string
	ActorID      string
	DurationDays float64
}

// RepositionInput carries an admin manual-reposition request. SpeedKMH and
// HeadingDegrees are optional observed telemetry: a reported speed
// recalibrates the simulator's playback rate, the heading is recorded for
// the audit log only (bearing is always derived from the route).
type RepositionInput struct {
	ShipmentID     string
	ActorID        string
	Latitude       float64
	Longitude      float64
	SpeedKMH       *float64
	HeadingDegrees *float64
}

// RerouteInput replaces the remaining route with new waypoints; the current
// position becomes the new origin.
type RerouteInput struct {
	ShipmentID string
	ActorID    string
	Waypoints  []geo.Coordinate
	Reason     string
}

// MovementControlService is the authorized mutating surface over shipment
// movement. Every call validates preconditions before touching state and
// appends one audit entry on success.
type MovementControlService interface {
	StartTrip(ctx context.Context, in StartTripInput) (*shipment.MovementState, error)
	Intercept(ctx context.Context, shipmentID, actorID, reason string) (*shipment.MovementState, error)
	Clear(ctx context.Context, shipmentID, actorID, reason string) (*shipment.MovementState, error)
	Reposition(ctx context.Context, in RepositionInput) error
	Reroute(ctx context.Context, in RerouteInput) error
	ClearHistory(ctx context.Context, shipmentID, actorID string) (int64, error)
}
