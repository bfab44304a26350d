package contracts

import (
	"encoding/json"
	"time"
)

// Inbound WS event types.
const (
	WSTypeJoinShipment   = "join_shipment"
	WSTypeLeaveShipment  = "leave_shipment"
	WSTypeUpdateLocation = "update_location"
	WSTypeIntercept      = "intercept"
	WSTypeClear          = "clear"
)

// Outbound WS event types.
const (
	WSTypeJoinedShipment    = "joined_shipment"
	WSTypeLocationUpdate    = "location_update"
	WSTypeShipmentPaused    = "shipment_paused"
	WSTypeShipmentResumed   = "shipment_resumed"
	WSTypeShipmentDelivered = "shipment_delivered"
	WSTypeError             = "error"
)

// WSClientEvent is the envelope every inbound frame uses:
// { "type": "...", "data": { ... } }.
type WSClientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// WSJoinShipment is the payload of join_shipment / leave_shipment.
type WSJoinShipment struct {
	ShipmentID string `json:"shipment_id"`
}

// WSUpdateLocation is the admin-only manual reposition payload.
type WSUpdateLocation struct {
	ShipmentID string   `json:"shipment_id"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	SpeedKMH   *float64 `json:"speed_kmh,omitempty"`
	Heading    *float64 `json:"heading_degrees,omitempty"`
}

// WSInterceptClear is the admin-only intercept / clear payload.
type WSInterceptClear struct {
	ShipmentID string `json:"shipment_id"`
	Reason     string `json:"reason,omitempty"`
}

// WSJoinedShipment is sent to a subscriber immediately after joining a room,
// so no subscriber is ever left without an initial state.
type WSJoinedShipment struct {
	Type            string    `json:"type"` // always "joined_shipment"
	ShipmentID      string    `json:"shipment_id"`
	IsMoving        bool      `json:"is_moving"`
	CurrentLocation GeoPoint  `json:"current_location"`
	Progress        float64   `json:"progress"`
	HasArrived      bool      `json:"has_arrived"`
	Timestamp       time.Time `json:"timestamp"`
}

// WSLocationUpdate fans out one position snapshot to all room members.
type WSLocationUpdate struct {
	Type             string    `json:"type"` // always "location_update"
	ShipmentID       string    `json:"shipment_id"`
	Location         GeoPoint  `json:"location"`
	BearingDegrees   float64   `json:"bearing_degrees"`
	Progress         float64   `json:"progress"`
	RemainingKM      float64   `json:"distance_remaining_km"`
	SpeedKMH         float64   `json:"speed_kmh"`
	ETA              time.Time `json:"eta"`
	RemainingMinutes float64   `json:"remaining_minutes"`
	IsPaused         bool      `json:"is_paused"`
	HasArrived       bool      `json:"has_arrived"`
	Timestamp        time.Time `json:"timestamp"`
}

// WSStateChange carries shipment_paused / shipment_resumed /
// shipment_delivered. ActorID and Reason are populated only on the variant
// delivered to admin members; public members receive the redacted form.
type WSStateChange struct {
	Type       string    `json:"type"`
	ShipmentID string    `json:"shipment_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// WSError is the explicit rejection event returned to a caller; the
// connection is kept open.
type WSError struct {
	Type  string `json:"type"` // always "error"
	Error string `json:"error"`
}
