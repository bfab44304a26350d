package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	newYork    = Coordinate{Latitude: 40.7128, Longitude: -74.0060}
	losAngeles = Coordinate{Latitude: 34.0522, Longitude: -118.2437}
)

func TestHaversineKM(t *testing.T) {
	// NYC -> LA great-circle distance is roughly 3936 km
	d := HaversineKM(newYork, losAngeles)
	assert.InDelta(t, 3936, d, 50)

	assert.Zero(t, HaversineKM(newYork, newYork))

	// symmetry
	assert.InDelta(t, d, HaversineKM(losAngeles, newYork), 1e-9)
}

func TestInitialBearing(t *testing.T) {
	// due north along a meridian
	north := InitialBearing(Coordinate{0, 0}, Coordinate{10, 0})
	assert.InDelta(t, 0, north, 1e-9)

	// due east along the equator
	east := InitialBearing(Coordinate{0, 0}, Coordinate{0, 10})
	assert.InDelta(t, 90, east, 1e-9)

	// due south
	south := InitialBearing(Coordinate{10, 0}, Coordinate{0, 0})
	assert.InDelta(t, 180, south, 1e-9)

	// always normalized to [0, 360)
	b := InitialBearing(newYork, losAngeles)
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 360.0)
}

func TestInterpolateEndpoints(t *testing.T) {
	assert.Equal(t, newYork, Interpolate(newYork, losAngeles, 0))
	assert.Equal(t, losAngeles, Interpolate(newYork, losAngeles, 1))

	// out-of-range t clamps to the endpoints
	assert.Equal(t, newYork, Interpolate(newYork, losAngeles, -0.5))
	assert.Equal(t, losAngeles, Interpolate(newYork, losAngeles, 1.5))
}

func TestInterpolateShortLegIsLinear(t *testing.T) {
	a := Coordinate{Latitude: 0, Longitude: 0}
	b := Coordinate{Latitude: 0.5, Longitude: 0.5}

	mid := Interpolate(a, b, 0.5)
	assert.InDelta(t, 0.25, mid.Latitude, 1e-9)
	assert.InDelta(t, 0.25, mid.Longitude, 1e-9)
}

func TestInterpolateLongLegFollowsGreatCircle(t *testing.T) {
	// an equatorial leg long enough to trigger spherical interpolation
	a := Coordinate{Latitude: 0, Longitude: 0}
	b := Coordinate{Latitude: 0, Longitude: 10}

	mid := Interpolate(a, b, 0.5)
	assert.InDelta(t, 0, mid.Latitude, 1e-6)
	assert.InDelta(t, 5, mid.Longitude, 1e-6)

	// the midpoint splits the distance evenly
	dTotal := HaversineKM(a, b)
	assert.InDelta(t, dTotal/2, HaversineKM(a, mid), 0.5)
}

func TestNearestPointOnSegment(t *testing.T) {
	s := Coordinate{Latitude: 0, Longitude: 0}
	e := Coordinate{Latitude: 0, Longitude: 10}

	// perpendicular point snaps to the segment interior
	snapped, frac := NearestPointOnSegment(Coordinate{Latitude: 1, Longitude: 5}, s, e)
	assert.InDelta(t, 0, snapped.Latitude, 1e-9)
	assert.InDelta(t, 5, snapped.Longitude, 1e-9)
	assert.InDelta(t, 0.5, frac, 1e-9)

	// point before the start clamps to the start
	snapped, frac = NearestPointOnSegment(Coordinate{Latitude: 0, Longitude: -3}, s, e)
	assert.Equal(t, s, snapped)
	assert.Zero(t, frac)

	// point beyond the end clamps to the end
	snapped, frac = NearestPointOnSegment(Coordinate{Latitude: 0, Longitude: 14}, s, e)
	assert.InDelta(t, e.Longitude, snapped.Longitude, 1e-9)
	assert.InDelta(t, 1, frac, 1e-9)

	// zero-length segment returns the start
	snapped, frac = NearestPointOnSegment(Coordinate{Latitude: 2, Longitude: 2}, s, s)
	assert.Equal(t, s, snapped)
	assert.Zero(t, frac)
}

func TestETA(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	eta, minutes := ETA(100, 50, now)
	assert.InDelta(t, 120, minutes, 1e-9)
	assert.Equal(t, now.Add(2*time.Hour), eta)

	// zero speed or zero distance means "already there"
	eta, minutes = ETA(100, 0, now)
	assert.Equal(t, now, eta)
	assert.Zero(t, minutes)

	eta, minutes = ETA(0, 50, now)
	assert.Equal(t, now, eta)
	assert.Zero(t, minutes)
}

func TestNewCoordinateValidation(t *testing.T) {
	_, err := NewCoordinate(91, 0)
	require.ErrorIs(t, err, ErrInvalidLatitude)

	_, err = NewCoordinate(0, 181)
	require.ErrorIs(t, err, ErrInvalidLongitude)

	c, err := NewCoordinate(40.7128, -74.0060)
	require.NoError(t, err)
	assert.Equal(t, newYork, c)
}
