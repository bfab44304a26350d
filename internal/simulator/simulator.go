package simulator

import (
	"errors"
	"sync"
	"time"

	"ship-track/internal/domain/geo"
	"ship-track/internal/domain/route"
)

// State is the playback state of one shipment's simulator.
type State string

const (
	StateRunning State = "RUNNING"
	StatePaused  State = "PAUSED"
	StateArrived State = "ARRIVED"
)

const (
	minSpeedMultiplier = 0.1
	maxSpeedMultiplier = 10.0
)

var ErrNoRoute = errors.New("simulator has no route")

// Snapshot is a computed, never-persisted projection of the current
// position. It is recomputed on every evaluation from (route, progress,
// speed, movement state).
type Snapshot struct {
	Position         geo.Coordinate
	BearingDegrees   float64
	Progress         float64
	RemainingKM      float64
	SpeedKMH         float64
	ETA              time.Time
	RemainingMinutes float64
	IsPaused         bool
	HasArrived       bool
	ComputedAt       time.Time
}

// Simulator derives a shipment's position from wall-clock time elapsed since
// a stored start instant, so the answer is consistent no matter how often or
// irregularly it is asked to render. One instance exists per active shipment
// and is owned by its worker; all methods are safe for concurrent use.
type Simulator struct {
	mu sync.Mutex

	shipmentID string
	route      *route.Route
	avgKMH     float64

	state           State
	arrivalFired    bool
	tripDuration    time.Duration
	startInstant    time.Time
	pausedInstant   time.Time
	pausedTotal     time.Duration
	initialProgress float64
	speedMultiplier float64

	now func() time.Time
}

// Option tweaks simulator construction.
type Option func(*Simulator)

// WithClock replaces the wall clock; tests use this.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// New builds a simulator for one shipment. moving selects the initial state
// (a shipment intercepted before a restart comes back paused). A nil route,
// a zero-length route, or a non-positive duration yields a simulator that is
// already arrived; evaluation never fails.
func New(shipmentID string, r *route.Route, avgSpeedKMH float64, tripDuration time.Duration, moving bool, opts ...Option) *Simulator {
	s := &Simulator{
		shipmentID:      shipmentID,
		route:           r,
		avgKMH:          avgSpeedKMH,
		tripDuration:    tripDuration,
		speedMultiplier: 1,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	now := s.now()
	s.startInstant = now
	s.pausedInstant = now

	switch {
	case s.degenerate():
		s.state = StateArrived
	case moving:
		s.state = StateRunning
	default:
		s.state = StatePaused
	}
	return s
}

// ShipmentID returns the owning shipment.
func (s *Simulator) ShipmentID() string { return s.shipmentID }

// State returns the current playback state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// degenerate reports whether evaluation must fall back to "already arrived".
func (s *Simulator) degenerate() bool {
	return s.route == nil || s.route.TotalDistanceKM() == 0 || s.tripDuration <= 0
}

// Start rewinds the clock and begins playback. No-op once arrived.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateArrived {
		return
	}
	s.state = StateRunning
	s.startInstant = s.now()
	s.pausedTotal = 0
}

// Pause freezes playback. The snapshot in effect at the pause instant is
// what every later evaluation returns until Resume. No-op unless RUNNING.
func (s *Simulator) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return
	}
	s.state = StatePaused
	s.pausedInstant = s.now()
}

// Resume continues playback, excluding the pause window from elapsed-time
// accounting so the position immediately after resume equals the position
// immediately before pause. No-op unless PAUSED.
func (s *Simulator) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return
	}
	s.pausedTotal += s.now().Sub(s.pausedInstant)
	s.state = StateRunning
}

// SeekTo jumps playback to progress p. Returns true when the seek lands the
// shipment at its destination (p>=1), which the caller must treat as the
// one-shot arrival.
func (s *Simulator) SeekTo(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateArrived {
		return false
	}

	now := s.now()
	s.initialProgress = clamp01(p)
	s.startInstant = now
	s.pausedInstant = now
	s.pausedTotal = 0

	if s.initialProgress >= 1 {
		s.state = StateArrived
		s.arrivalFired = true
		return true
	}
	return false
}

// RepositionTo snaps a point onto the route's nearest segment and seeks
// playback there. It returns the snapped progress and whether the seek landed
// the shipment at its destination.
func (s *Simulator) RepositionTo(c geo.Coordinate) (float64, bool) {
	s.mu.Lock()
	r := s.route
	s.mu.Unlock()
	if r == nil {
		return 1, false
	}
	_, _, p := r.NearestProgress(c)
	return p, s.SeekTo(p)
}

// SetSpeedMultiplier changes playback speed without a visible jump: the
// start instant is re-derived so the effective elapsed time under the new
// multiplier reproduces the progress that held just before the change.
func (s *Simulator) SetSpeedMultiplier(m float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m < minSpeedMultiplier {
		m = minSpeedMultiplier
	}
	if m > maxSpeedMultiplier {
		m = maxSpeedMultiplier
	}
	if s.state == StateArrived || m == s.speedMultiplier {
		s.speedMultiplier = m
		return
	}

	effNow := s.effectiveNow()
	raw := s.rawElapsed(effNow)
	rebased := time.Duration(float64(raw) * s.speedMultiplier / m)

	s.startInstant = effNow.Add(-rebased)
	s.pausedTotal = 0
	s.speedMultiplier = m
}

// CalibrateSpeed re-derives the playback rate from an observed ground speed:
// the multiplier becomes reported/average, subject to the usual clamp and
// the no-jump continuity of SetSpeedMultiplier. Non-positive reports are
// ignored.
func (s *Simulator) CalibrateSpeed(reportedKMH float64) {
	if reportedKMH <= 0 || s.avgKMH <= 0 {
		return
	}
	s.SetSpeedMultiplier(reportedKMH / s.avgKMH)
}

// Reroute replaces the route with one starting at the current position.
// Progress restarts at zero and the trip duration is recomputed from the new
// total distance at the configured average speed. Playback state carries
// over unchanged.
func (s *Simulator) Reroute(waypoints []geo.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateArrived {
		return nil
	}
	if len(waypoints) == 0 {
		return route.ErrEmptyRoute
	}

	origin := s.snapshotLocked().Position
	r, err := route.New(append([]geo.Coordinate{origin}, waypoints...))
	if err != nil {
		return err
	}

	now := s.now()
	s.route = r
	s.initialProgress = 0
	s.startInstant = now
	s.pausedInstant = now
	s.pausedTotal = 0
	if s.avgKMH > 0 {
		s.tripDuration = time.Duration(r.TotalDistanceKM() / s.avgKMH * float64(time.Hour))
	}
	if s.degenerate() {
		s.state = StateArrived
	}
	return nil
}

// Evaluate is a pure read: it computes the current snapshot and never
// mutates state, so it is safe to call at arbitrary rates.
func (s *Simulator) Evaluate() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Tick evaluates and performs the one-shot arrival transition: the first
// evaluation at progress>=1 flips the state to ARRIVED and returns
// arrivedNow=true exactly once. Later ticks return the same terminal
// snapshot with arrivedNow=false. The one-shot is tracked explicitly, so a
// simulator constructed already-arrived (degenerate route, zero duration)
// still fires on its first tick.
func (s *Simulator) Tick() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	if snap.HasArrived && !s.arrivalFired {
		s.arrivalFired = true
		s.state = StateArrived
		return snap, true
	}
	return snap, false
}

// effectiveNow is the instant progress accounting runs against: the wall
// clock while running, frozen at the pause instant while paused.
func (s *Simulator) effectiveNow() time.Time {
	if s.state == StatePaused {
		return s.pausedInstant
	}
	return s.now()
}

func (s *Simulator) rawElapsed(effNow time.Time) time.Duration {
	raw := effNow.Sub(s.startInstant) - s.pausedTotal
	if raw < 0 {
		raw = 0
	}
	return raw
}

func (s *Simulator) snapshotLocked() Snapshot {
	now := s.now()

	if s.degenerate() || s.state == StateArrived {
		return s.terminalSnapshot(now)
	}

	raw := s.rawElapsed(s.effectiveNow())
	eff := time.Duration(float64(raw) * s.speedMultiplier)
	progress := s.initialProgress +
		(eff.Seconds()/s.tripDuration.Seconds())*(1-s.initialProgress)
	progress = clamp01(progress)

	pos := s.route.PositionAtProgress(progress)
	total := s.route.TotalDistanceKM()
	remaining := (1 - progress) * total

	paused := s.state == StatePaused
	speed := 0.0
	if !paused && progress < 1 {
		speed = total * (1 - s.initialProgress) / s.tripDuration.Hours() * s.speedMultiplier
	}

	eta, minutes := geo.ETA(remaining, speed, now)

	return Snapshot{
		Position:         pos.Coordinate,
		BearingDegrees:   pos.BearingDegrees,
		Progress:         progress,
		RemainingKM:      remaining,
		SpeedKMH:         speed,
		ETA:              eta,
		RemainingMinutes: minutes,
		IsPaused:         paused,
		HasArrived:       progress >= 1,
		ComputedAt:       now,
	}
}

// terminalSnapshot is the idempotent arrived view: last valid point,
// progress 1, nothing remaining.
func (s *Simulator) terminalSnapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Progress:   1,
		HasArrived: true,
		ETA:        now,
		ComputedAt: now,
	}
	if s.route != nil {
		pos := s.route.PositionAtProgress(1)
		snap.Position = pos.Coordinate
		snap.BearingDegrees = pos.BearingDegrees
	}
	return snap
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
