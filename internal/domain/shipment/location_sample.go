package shipment

import (
	"time"

	"ship-track/internal/domain/geo"
)

// LocationSample is one archived tracking tick. Samples are transient
// operational data: they back the admin history view and nothing else, and
// clearHistory purges them wholesale.
type LocationSample struct {
	ID             string
	ShipmentID     string
	Position       geo.Coordinate
	SpeedKMH       float64
	HeadingDegrees float64
	Progress       float64
	RecordedAt     time.Time
}

// NewLocationSample constructs and validates a sample.
func NewLocationSample(shipmentID string, position geo.Coordinate, speedKMH, headingDegrees, progress float64, recordedAt time.Time) (*LocationSample, error) {
	if shipmentID == "" {
		return nil, ErrEmptyShipmentID
	}
	if err := position.Validate(); err != nil {
		return nil, err
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	return &LocationSample{
		ShipmentID:     shipmentID,
		Position:       position,
		SpeedKMH:       speedKMH,
		HeadingDegrees: headingDegrees,
		Progress:       progress,
		RecordedAt:     recordedAt,
	}, nil
}
