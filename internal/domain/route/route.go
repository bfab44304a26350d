package route

import (
	"errors"
	"math"

	"ship-track/internal/domain/geo"
)

var ErrEmptyRoute = errors.New("route must contain at least one waypoint")

// Route is an ordered polyline of waypoints with precomputed cumulative
// distances. Built once per trip (or reroute) and never mutated afterwards.
type Route struct {
	waypoints  []geo.Coordinate
	cumulative []float64 // cumulative[i] = km from waypoints[0] to waypoints[i]
	totalKM    float64
}

// Position is a resolved point on the route.
type Position struct {
	Coordinate     geo.Coordinate
	BearingDegrees float64
	SegmentIndex   int
}

// New builds a Route from an ordered waypoint list. A single-point route is
// legal; it has zero length and every progress resolves to that point.
func New(waypoints []geo.Coordinate) (*Route, error) {
	if len(waypoints) == 0 {
		return nil, ErrEmptyRoute
	}
	for _, w := range waypoints {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}

	pts := make([]geo.Coordinate, len(waypoints))
	copy(pts, waypoints)

	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + geo.HaversineKM(pts[i-1], pts[i])
	}

	return &Route{
		waypoints:  pts,
		cumulative: cum,
		totalKM:    cum[len(cum)-1],
	}, nil
}

// TotalDistanceKM is the length of the full polyline.
func (r *Route) TotalDistanceKM() float64 { return r.totalKM }

// First returns the origin waypoint.
func (r *Route) First() geo.Coordinate { return r.waypoints[0] }

// Last returns the destination waypoint.
func (r *Route) Last() geo.Coordinate { return r.waypoints[len(r.waypoints)-1] }

// Waypoints returns a copy of the waypoint list.
func (r *Route) Waypoints() []geo.Coordinate {
	out := make([]geo.Coordinate, len(r.waypoints))
	copy(out, r.waypoints)
	return out
}

// PositionAtProgress resolves the point at fraction p of the total distance.
// p is clamped to [0,1]. The bearing points toward the far end of the
// containing segment; at the final waypoint it holds the last segment's
// bearing so an arrived marker keeps its heading.
func (r *Route) PositionAtProgress(p float64) Position {
	p = clamp01(p)

	if len(r.waypoints) == 1 || r.totalKM == 0 {
		return Position{Coordinate: r.waypoints[0]}
	}

	target := p * r.totalKM

	// find the segment containing the target distance
	seg := len(r.waypoints) - 2
	for i := 1; i < len(r.cumulative); i++ {
		if target <= r.cumulative[i] {
			seg = i - 1
			break
		}
	}

	s, e := r.waypoints[seg], r.waypoints[seg+1]
	segLen := r.cumulative[seg+1] - r.cumulative[seg]

	var t float64
	if segLen > 0 {
		t = (target - r.cumulative[seg]) / segLen
	}

	return Position{
		Coordinate:     geo.Interpolate(s, e, t),
		BearingDegrees: geo.InitialBearing(s, e),
		SegmentIndex:   seg,
	}
}

// DistanceAtProgress returns the km travelled at fraction p.
func (r *Route) DistanceAtProgress(p float64) float64 {
	return clamp01(p) * r.totalKM
}

// NearestProgress scans every segment, snaps point onto it, and returns the
// overall closest match: the snapped coordinate, the segment index, and the
// route progress of the snapped point. Manual repositioning uses this to keep
// the marker on rails.
func (r *Route) NearestProgress(point geo.Coordinate) (geo.Coordinate, int, float64) {
	if len(r.waypoints) == 1 || r.totalKM == 0 {
		return r.waypoints[0], 0, 0
	}

	best := r.waypoints[0]
	bestSeg := 0
	bestDist := math.Inf(1)
	bestProgress := 0.0

	for i := 0; i+1 < len(r.waypoints); i++ {
		snapped, t := geo.NearestPointOnSegment(point, r.waypoints[i], r.waypoints[i+1])
		d := geo.HaversineKM(point, snapped)
		if d < bestDist {
			bestDist = d
			best = snapped
			bestSeg = i
			segLen := r.cumulative[i+1] - r.cumulative[i]
			bestProgress = (r.cumulative[i] + t*segLen) / r.totalKM
		}
	}

	return best, bestSeg, clamp01(bestProgress)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
