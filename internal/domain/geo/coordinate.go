package geo

import (
	"errors"
	"math"
)

// Coordinate is an immutable WGS-84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// NewCoordinate validates the pair and returns the value.
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	c := Coordinate{Latitude: latitude, Longitude: longitude}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks ranges and rejects NaN.
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 || math.IsNaN(c.Latitude) {
		return ErrInvalidLatitude
	}
	if c.Longitude < -180 || c.Longitude > 180 || math.IsNaN(c.Longitude) {
		return ErrInvalidLongitude
	}
	return nil
}
