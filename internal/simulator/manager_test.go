package simulator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ship-track/internal/domain/geo"
	"ship-track/internal/domain/route"
	"ship-track/internal/general/logger"
)

// collectSink records every published snapshot.
type collectSink struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (s *collectSink) PublishPosition(_ string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
}

func (s *collectSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

func shortRoute(t *testing.T) *route.Route {
	t.Helper()
	r, err := route.New([]geo.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.1},
	})
	require.NoError(t, err)
	return r
}

func TestManagerRejectsDuplicateStart(t *testing.T) {
	sink := &collectSink{}
	mgr := NewManager(sink, 5*time.Millisecond, logger.New("sim-test"))
	defer mgr.StopAll()

	sim := New("ship-1", shortRoute(t), 50, time.Hour, true)
	require.NoError(t, mgr.Start(context.Background(), sim))

	err := mgr.Start(context.Background(), New("ship-1", shortRoute(t), 50, time.Hour, true))
	require.ErrorIs(t, err, ErrAlreadyRunning)

	got, ok := mgr.Get("ship-1")
	require.True(t, ok)
	assert.Same(t, sim, got)
}

func TestManagerTicksAndStops(t *testing.T) {
	sink := &collectSink{}
	mgr := NewManager(sink, 5*time.Millisecond, logger.New("sim-test"))

	sim := New("ship-1", shortRoute(t), 50, time.Hour, true)
	require.NoError(t, mgr.Start(context.Background(), sim))

	require.Eventually(t, func() bool { return sink.count() >= 3 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, mgr.Stop("ship-1"))
	_, ok := mgr.Get("ship-1")
	assert.False(t, ok)

	require.ErrorIs(t, mgr.Stop("ship-1"), ErrNotRunning)
}

func TestManagerFiresArrivalOnceAndDeregisters(t *testing.T) {
	sink := &collectSink{}
	mgr := NewManager(sink, 5*time.Millisecond, logger.New("sim-test"))
	defer mgr.StopAll()

	arrivals := make(chan string, 4)
	mgr.OnArrival(func(shipmentID string, snap Snapshot) {
		assert.True(t, snap.HasArrived)
		arrivals <- shipmentID
	})

	// a trip this short arrives within a tick or two
	sim := New("ship-1", shortRoute(t), 50, 10*time.Millisecond, true)
	require.NoError(t, mgr.Start(context.Background(), sim))

	select {
	case id := <-arrivals:
		assert.Equal(t, "ship-1", id)
	case <-time.After(time.Second):
		t.Fatal("arrival callback never fired")
	}

	// worker is gone; no second arrival can fire
	require.Eventually(t, func() bool {
		_, ok := mgr.Get("ship-1")
		return !ok
	}, time.Second, 5*time.Millisecond)

	select {
	case <-arrivals:
		t.Fatal("arrival fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManagerDeliversSinglePointTrip(t *testing.T) {
	sink := &collectSink{}
	mgr := NewManager(sink, 5*time.Millisecond, logger.New("sim-test"))
	defer mgr.StopAll()

	arrivals := make(chan string, 4)
	mgr.OnArrival(func(shipmentID string, snap Snapshot) {
		assert.True(t, snap.HasArrived)
		arrivals <- shipmentID
	})

	// origin equals destination: the trip is over before it begins, but the
	// arrival must still fire and the worker must still be reaped
	single, err := route.New([]geo.Coordinate{{Latitude: 1, Longitude: 1}})
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background(), New("ship-1", single, 50, time.Hour, true)))

	select {
	case id := <-arrivals:
		assert.Equal(t, "ship-1", id)
	case <-time.After(time.Second):
		t.Fatal("arrival callback never fired")
	}

	require.Eventually(t, func() bool {
		_, ok := mgr.Get("ship-1")
		return !ok
	}, time.Second, 5*time.Millisecond)

	select {
	case <-arrivals:
		t.Fatal("arrival fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManagerStopAll(t *testing.T) {
	sink := &collectSink{}
	mgr := NewManager(sink, 5*time.Millisecond, logger.New("sim-test"))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, mgr.Start(context.Background(), New(id, shortRoute(t), 50, time.Hour, true)))
	}

	mgr.StopAll()
	for _, id := range []string{"a", "b", "c"} {
		_, ok := mgr.Get(id)
		assert.False(t, ok)
	}
}

func TestPausedWorkerEmitsNothing(t *testing.T) {
	sink := &collectSink{}
	mgr := NewManager(sink, 5*time.Millisecond, logger.New("sim-test"))
	defer mgr.StopAll()

	sim := New("ship-1", shortRoute(t), 50, time.Hour, true)
	sim.Pause()
	require.NoError(t, mgr.Start(context.Background(), sim))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, sink.count())
}
