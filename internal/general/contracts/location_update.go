package contracts

import "time"

// LocationUpdateMessage is broadcast by the tracking service on simulator
// ticks. Exchange: ExchangeLocationFanout (fanout, no routing key).
type LocationUpdateMessage struct {
	ShipmentID     string    `json:"shipment_id"`
	Location       GeoPoint  `json:"location"`
	SpeedKMH       float64   `json:"speed_kmh,omitempty"`
	HeadingDegrees float64   `json:"heading_degrees,omitempty"`
	Progress       float64   `json:"progress"`
	Timestamp      time.Time `json:"timestamp"`
	Envelope
}

// MovementStatusMessage announces movement state transitions.
// Exchange: ExchangeShipmentTopic, routing key "shipment.status.{status}".
type MovementStatusMessage struct {
	ShipmentID string    `json:"shipment_id"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Envelope
}
