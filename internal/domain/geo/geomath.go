package geo

import (
	"math"
	"time"
)

const earthRadiusKM = 6371.0

// slerpThresholdKM is the leg length above which linear interpolation shows
// visible curvature error, so we switch to spherical interpolation.
const slerpThresholdKM = 100.0

// HaversineKM returns the great-circle distance between two points in km.
func HaversineKM(a, b Coordinate) float64 {
	la1 := a.Latitude * math.Pi / 180
	la2 := b.Latitude * math.Pi / 180
	dla := (b.Latitude - a.Latitude) * math.Pi / 180
	dlo := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dla/2)*math.Sin(dla/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dlo/2)*math.Sin(dlo/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}

// InitialBearing returns the initial compass bearing from a toward b in
// degrees, normalized to [0, 360).
func InitialBearing(a, b Coordinate) float64 {
	la1 := a.Latitude * math.Pi / 180
	la2 := b.Latitude * math.Pi / 180
	dlo := (b.Longitude - a.Longitude) * math.Pi / 180

	y := math.Sin(dlo) * math.Cos(la2)
	x := math.Cos(la1)*math.Sin(la2) - math.Sin(la1)*math.Cos(la2)*math.Cos(dlo)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Interpolate returns the point at fraction t along the leg from a to b.
// Short legs use linear interpolation; long legs use spherical interpolation
// so the marker follows the great circle. Interpolate(a,b,0)==a and
// Interpolate(a,b,1)==b in both branches.
func Interpolate(a, b Coordinate, t float64) Coordinate {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if HaversineKM(a, b) < slerpThresholdKM {
		return Coordinate{
			Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
			Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
		}
	}
	return slerp(a, b, t)
}

// slerp interpolates along the great circle through a and b.
func slerp(a, b Coordinate, t float64) Coordinate {
	la1 := a.Latitude * math.Pi / 180
	lo1 := a.Longitude * math.Pi / 180
	la2 := b.Latitude * math.Pi / 180
	lo2 := b.Longitude * math.Pi / 180

	// angular distance between the points
	d := HaversineKM(a, b) / earthRadiusKM
	sinD := math.Sin(d)
	if sinD == 0 {
		return a
	}

	fa := math.Sin((1-t)*d) / sinD
	fb := math.Sin(t*d) / sinD

	x := fa*math.Cos(la1)*math.Cos(lo1) + fb*math.Cos(la2)*math.Cos(lo2)
	y := fa*math.Cos(la1)*math.Sin(lo1) + fb*math.Cos(la2)*math.Sin(lo2)
	z := fa*math.Sin(la1) + fb*math.Sin(la2)

	return Coordinate{
		Latitude:  math.Atan2(z, math.Sqrt(x*x+y*y)) * 180 / math.Pi,
		Longitude: math.Atan2(y, x) * 180 / math.Pi,
	}
}

// NearestPointOnSegment projects p onto the segment [s,e] and clamps to the
// segment ends. It returns the snapped point and the fraction t in [0,1] of
// the projection along the segment. A zero-length segment returns s with t=0.
// The projection is planar (longitude scaled by cos latitude), which is
// accurate enough for snapping a dragged marker back onto a route leg.
func NearestPointOnSegment(p, s, e Coordinate) (Coordinate, float64) {
	scale := math.Cos(s.Latitude * math.Pi / 180)

	px := (p.Longitude - s.Longitude) * scale
	py := p.Latitude - s.Latitude
	ex := (e.Longitude - s.Longitude) * scale
	ey := e.Latitude - s.Latitude

	lenSq := ex*ex + ey*ey
	if lenSq == 0 {
		return s, 0
	}

	t := (px*ex + py*ey) / lenSq
	t = math.Max(0, math.Min(1, t))

	return Coordinate{
		Latitude:  s.Latitude + ey*t,
		Longitude: s.Longitude + (ex*t)/scale,
	}, t
}

// ETA converts remaining distance and speed into an arrival estimate.
// Non-positive distance or speed means "already there": zero minutes, eta=now.
func ETA(remainingKM, speedKMH float64, now time.Time) (time.Time, float64) {
	if remainingKM <= 0 || speedKMH <= 0 {
		return now, 0
	}
	minutes := (remainingKM / speedKMH) * 60
	return now.Add(time.Duration(minutes * float64(time.Minute))), minutes
}
