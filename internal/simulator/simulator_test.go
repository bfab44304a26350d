package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ship-track/internal/domain/geo"
	"ship-track/internal/domain/route"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func crossCountryRoute(t *testing.T) *route.Route {
	t.Helper()
	r, err := route.New([]geo.Coordinate{
		{Latitude: 40.7128, Longitude: -74.0060},  // New York
		{Latitude: 41.8781, Longitude: -87.6298},  // Chicago
		{Latitude: 39.7392, Longitude: -104.9903}, // Denver
		{Latitude: 34.0522, Longitude: -118.2437}, // Los Angeles
	})
	require.NoError(t, err)
	return r
}

func newTestSim(t *testing.T, clk *fakeClock) *Simulator {
	t.Helper()
	return New("ship-1", crossCountryRoute(t), 85, 48*time.Hour, true, WithClock(clk.Now))
}

func TestProgressAdvancesWithWallClock(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	snap := sim.Evaluate()
	assert.Zero(t, snap.Progress)
	assert.False(t, snap.IsPaused)
	assert.False(t, snap.HasArrived)

	clk.Advance(12 * time.Hour)
	snap = sim.Evaluate()
	assert.InDelta(t, 0.25, snap.Progress, 1e-9)

	clk.Advance(12 * time.Hour)
	snap = sim.Evaluate()
	assert.InDelta(t, 0.5, snap.Progress, 1e-9)
	assert.Greater(t, snap.RemainingKM, 0.0)
	assert.Greater(t, snap.SpeedKMH, 0.0)
}

func TestEvaluateIsMonotonicWhileRunning(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	prev := -1.0
	for i := 0; i < 100; i++ {
		clk.Advance(17 * time.Minute)
		snap := sim.Evaluate()
		assert.GreaterOrEqual(t, snap.Progress, prev)
		prev = snap.Progress
	}
}

func TestEvaluateIsPure(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)
	clk.Advance(6 * time.Hour)

	first := sim.Evaluate()
	second := sim.Evaluate()
	assert.Equal(t, first.Progress, second.Progress)
	assert.Equal(t, first.Position, second.Position)
}

func TestPauseFreezesAndResumeContinues(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	clk.Advance(12 * time.Hour)
	before := sim.Evaluate()

	sim.Pause()
	assert.Equal(t, StatePaused, sim.State())

	// an arbitrarily long pause does not move the shipment
	clk.Advance(36 * time.Hour)
	frozen := sim.Evaluate()
	assert.Equal(t, before.Progress, frozen.Progress)
	assert.Equal(t, before.Position, frozen.Position)
	assert.True(t, frozen.IsPaused)
	assert.Zero(t, frozen.SpeedKMH)

	// the first post-resume snapshot equals the last pre-pause one
	sim.Resume()
	after := sim.Evaluate()
	assert.InDelta(t, before.Progress, after.Progress, 1e-9)
	assert.False(t, after.IsPaused)

	// and playback continues at the original rate
	clk.Advance(12 * time.Hour)
	assert.InDelta(t, 0.5, sim.Evaluate().Progress, 1e-9)
}

func TestPauseAndResumeAreNoOpsOutsideTheirStates(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	sim.Resume() // not paused
	assert.Equal(t, StateRunning, sim.State())

	sim.Pause()
	sim.Pause() // double pause
	assert.Equal(t, StatePaused, sim.State())
}

func TestSpeedMultiplierContinuity(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	clk.Advance(12 * time.Hour)
	before := sim.Evaluate()

	// no jump at the instant of the change
	sim.SetSpeedMultiplier(2)
	assert.InDelta(t, before.Progress, sim.Evaluate().Progress, 1e-9)

	// doubled rate afterwards: 6 more hours covers what 12 used to
	clk.Advance(6 * time.Hour)
	assert.InDelta(t, 0.5, sim.Evaluate().Progress, 1e-9)
}

func TestSpeedMultiplierClamped(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	sim.SetSpeedMultiplier(1000)
	clk.Advance(time.Hour)
	// clamped to 10x: one hour covers 10/48ths of the trip
	assert.InDelta(t, 10.0/48.0, sim.Evaluate().Progress, 1e-9)
}

func TestStartRewindsAndBeginsPlayback(t *testing.T) {
	clk := newFakeClock()
	sim := New("ship-1", crossCountryRoute(t), 85, 48*time.Hour, false, WithClock(clk.Now))
	require.Equal(t, StatePaused, sim.State())

	// time spent before Start does not count as trip time
	clk.Advance(6 * time.Hour)
	sim.Start()
	assert.Equal(t, StateRunning, sim.State())
	assert.Zero(t, sim.Evaluate().Progress)

	clk.Advance(12 * time.Hour)
	assert.InDelta(t, 0.25, sim.Evaluate().Progress, 1e-9)

	// no restart once the trip is over
	require.True(t, sim.SeekTo(1))
	sim.Start()
	assert.Equal(t, StateArrived, sim.State())
}

func TestCalibrateSpeedAdjustsPlaybackRate(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk) // average 85 km/h

	clk.Advance(12 * time.Hour)
	before := sim.Evaluate()

	// twice the average ground speed doubles the playback rate, with no jump
	sim.CalibrateSpeed(170)
	assert.InDelta(t, before.Progress, sim.Evaluate().Progress, 1e-9)
	clk.Advance(6 * time.Hour)
	assert.InDelta(t, 0.5, sim.Evaluate().Progress, 1e-9)

	// bogus reports are ignored
	mid := sim.Evaluate().Progress
	sim.CalibrateSpeed(0)
	sim.CalibrateSpeed(-10)
	assert.InDelta(t, mid, sim.Evaluate().Progress, 1e-9)
}

func TestSeekTo(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	arrived := sim.SeekTo(0.5)
	assert.False(t, arrived)
	assert.InDelta(t, 0.5, sim.Evaluate().Progress, 1e-9)

	// seeking to the end is the arrival
	arrived = sim.SeekTo(1)
	assert.True(t, arrived)
	assert.Equal(t, StateArrived, sim.State())

	// a second seek cannot re-fire it
	assert.False(t, sim.SeekTo(1))
}

func TestTickArrivalFiresExactlyOnce(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)
	r := crossCountryRoute(t)

	clk.Advance(49 * time.Hour)

	snap, arrivedNow := sim.Tick()
	assert.True(t, arrivedNow)
	assert.True(t, snap.HasArrived)
	assert.InDelta(t, 1, snap.Progress, 1e-9)
	assert.InDelta(t, r.Last().Latitude, snap.Position.Latitude, 1e-6)
	assert.InDelta(t, r.Last().Longitude, snap.Position.Longitude, 1e-6)

	// idempotent terminal snapshot afterwards
	snap2, arrivedAgain := sim.Tick()
	assert.False(t, arrivedAgain)
	assert.True(t, snap2.HasArrived)
	assert.Equal(t, snap.Position, snap2.Position)
	assert.Zero(t, snap2.RemainingKM)
}

func TestDegenerateInputsStartArrived(t *testing.T) {
	clk := newFakeClock()

	// nil route
	sim := New("ship-1", nil, 85, 48*time.Hour, true, WithClock(clk.Now))
	assert.Equal(t, StateArrived, sim.State())
	assert.True(t, sim.Evaluate().HasArrived)

	// zero-length route
	single, err := route.New([]geo.Coordinate{{Latitude: 1, Longitude: 1}})
	require.NoError(t, err)
	sim = New("ship-2", single, 85, 48*time.Hour, true, WithClock(clk.Now))
	snap := sim.Evaluate()
	assert.True(t, snap.HasArrived)
	assert.Equal(t, geo.Coordinate{Latitude: 1, Longitude: 1}, snap.Position)

	// non-positive duration
	sim = New("ship-3", crossCountryRoute(t), 85, 0, true, WithClock(clk.Now))
	assert.True(t, sim.Evaluate().HasArrived)
}

// A trip that starts already arrived must still announce the arrival, once.
func TestDegenerateTripFiresArrivalOnFirstTick(t *testing.T) {
	clk := newFakeClock()
	single, err := route.New([]geo.Coordinate{{Latitude: 1, Longitude: 1}})
	require.NoError(t, err)
	sim := New("ship-1", single, 85, 48*time.Hour, true, WithClock(clk.Now))

	snap, arrivedNow := sim.Tick()
	assert.True(t, arrivedNow)
	assert.True(t, snap.HasArrived)
	assert.Equal(t, geo.Coordinate{Latitude: 1, Longitude: 1}, snap.Position)

	_, arrivedAgain := sim.Tick()
	assert.False(t, arrivedAgain)
}

func TestReroute(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	clk.Advance(12 * time.Hour)
	before := sim.Evaluate()

	dest := geo.Coordinate{Latitude: 29.7604, Longitude: -95.3698} // Houston
	require.NoError(t, sim.Reroute([]geo.Coordinate{dest}))

	snap := sim.Evaluate()
	// progress restarts; position holds at the old location (the new origin)
	assert.Zero(t, snap.Progress)
	assert.InDelta(t, before.Position.Latitude, snap.Position.Latitude, 1e-6)
	assert.InDelta(t, before.Position.Longitude, snap.Position.Longitude, 1e-6)

	// duration is re-derived from the new distance at the average speed
	expected := geo.HaversineKM(before.Position, dest)
	assert.InDelta(t, expected, snap.RemainingKM, 1)

	require.ErrorIs(t, sim.Reroute(nil), route.ErrEmptyRoute)
}

func TestRerouteWhilePausedStaysPaused(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	clk.Advance(12 * time.Hour)
	sim.Pause()
	require.NoError(t, sim.Reroute([]geo.Coordinate{{Latitude: 29.7604, Longitude: -95.3698}}))

	assert.Equal(t, StatePaused, sim.State())
	assert.True(t, sim.Evaluate().IsPaused)
}

func TestRepositionTo(t *testing.T) {
	clk := newFakeClock()
	sim := newTestSim(t, clk)

	// snap roughly to Denver, two thirds of the way along the polyline
	progress, arrived := sim.RepositionTo(geo.Coordinate{Latitude: 39.8, Longitude: -105.0})
	assert.False(t, arrived)
	assert.Greater(t, progress, 0.5)
	assert.InDelta(t, progress, sim.Evaluate().Progress, 1e-9)

	// snapping past the destination is the arrival
	_, arrived = sim.RepositionTo(geo.Coordinate{Latitude: 34.0522, Longitude: -118.2437})
	assert.True(t, arrived)
	assert.Equal(t, StateArrived, sim.State())
}
