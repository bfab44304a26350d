package gateway

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ship-track/internal/domain/actor"
	"ship-track/internal/domain/geo"
	"ship-track/internal/general/contracts"
	"ship-track/internal/general/logger"
	"ship-track/internal/movement"
	"ship-track/internal/simulator"
)

// fakeConn records everything written to it.
type fakeConn struct {
	mu     sync.Mutex
	events []any
	closed bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) snapshot() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) stateChanges() []contracts.WSStateChange {
	var out []contracts.WSStateChange
	for _, ev := range c.snapshot() {
		if sc, ok := ev.(contracts.WSStateChange); ok {
			out = append(out, sc)
		}
	}
	return out
}

func (c *fakeConn) locationUpdates() []contracts.WSLocationUpdate {
	var out []contracts.WSLocationUpdate
	for _, ev := range c.snapshot() {
		if lu, ok := ev.(contracts.WSLocationUpdate); ok {
			out = append(out, lu)
		}
	}
	return out
}

// blockingConn stalls on the first write, simulating a socket that stopped
// reading.
type blockingConn struct {
	fakeConn
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *blockingConn) WriteJSON(v any) error {
	c.once.Do(func() { close(c.started) })
	<-c.release
	return c.fakeConn.WriteJSON(v)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func newTestGateway(t *testing.T) (*Gateway, *movement.Store) {
	t.Helper()
	store := movement.NewStore()
	gw := NewGateway(store, nil, 8, logger.New("gateway-test"))
	return gw, store
}

func testSnapshot(progress float64) simulator.Snapshot {
	return simulator.Snapshot{
		Position:   geo.Coordinate{Latitude: 40.7, Longitude: -74.0},
		Progress:   progress,
		ComputedAt: time.Now().UTC(),
	}
}

func TestJoinDeliversInitialState(t *testing.T) {
	gw, store := newTestGateway(t)
	_, err := store.Create("ship-1", "ops-1")
	require.NoError(t, err)

	conn := &fakeConn{}
	sub := NewSubscriber(conn, "", actor.CapabilityPublic, 8)
	defer sub.Close()

	gw.Join("ship-1", sub)

	waitFor(t, func() bool { return len(conn.snapshot()) == 1 })
	joined, ok := conn.snapshot()[0].(contracts.WSJoinedShipment)
	require.True(t, ok)
	assert.Equal(t, contracts.WSTypeJoinedShipment, joined.Type)
	assert.Equal(t, "ship-1", joined.ShipmentID)
	assert.True(t, joined.IsMoving)
}

func TestPublishPositionFansOutToAllMembers(t *testing.T) {
	gw, _ := newTestGateway(t)

	connA, connB := &fakeConn{}, &fakeConn{}
	subA := NewSubscriber(connA, "ops-1", actor.CapabilityAdmin, 8)
	subB := NewSubscriber(connB, "", actor.CapabilityPublic, 8)
	defer subA.Close()
	defer subB.Close()

	gw.Join("ship-1", subA)
	gw.Join("ship-1", subB)

	gw.PublishPosition("ship-1", testSnapshot(0.4))

	waitFor(t, func() bool {
		return len(connA.locationUpdates()) == 1 && len(connB.locationUpdates()) == 1
	})
	assert.InDelta(t, 0.4, connA.locationUpdates()[0].Progress, 1e-9)
	assert.InDelta(t, 0.4, connB.locationUpdates()[0].Progress, 1e-9)
}

func TestPublishPositionDoesNotLeakAcrossRooms(t *testing.T) {
	gw, _ := newTestGateway(t)

	connA, connB := &fakeConn{}, &fakeConn{}
	subA := NewSubscriber(connA, "", actor.CapabilityPublic, 8)
	subB := NewSubscriber(connB, "", actor.CapabilityPublic, 8)
	defer subA.Close()
	defer subB.Close()

	gw.Join("ship-1", subA)
	gw.Join("ship-2", subB)

	gw.PublishPosition("ship-1", testSnapshot(0.7))

	waitFor(t, func() bool { return len(connA.locationUpdates()) == 1 })
	assert.Empty(t, connB.locationUpdates())
}

func TestStateChangeRedactsActorForPublic(t *testing.T) {
	gw, _ := newTestGateway(t)

	adminConn, publicConn := &fakeConn{}, &fakeConn{}
	admin := NewSubscriber(adminConn, "ops-9", actor.CapabilityAdmin, 8)
	public := NewSubscriber(publicConn, "", actor.CapabilityPublic, 8)
	defer admin.Close()
	defer public.Close()

	gw.Join("ship-1", admin)
	gw.Join("ship-1", public)

	gw.PublishStateChange("ship-1", contracts.WSTypeShipmentPaused, "ops-9", "customs hold")

	waitFor(t, func() bool {
		return len(adminConn.stateChanges()) == 1 && len(publicConn.stateChanges()) == 1
	})

	adminEv := adminConn.stateChanges()[0]
	assert.Equal(t, contracts.WSTypeShipmentPaused, adminEv.Type)
	assert.Equal(t, "ops-9", adminEv.ActorID)
	assert.Equal(t, "customs hold", adminEv.Reason)

	publicEv := publicConn.stateChanges()[0]
	assert.Equal(t, contracts.WSTypeShipmentPaused, publicEv.Type)
	assert.Empty(t, publicEv.ActorID)
	assert.Empty(t, publicEv.Reason)
}

func TestSlowSubscriberDroppedOthersUnaffected(t *testing.T) {
	gw, _ := newTestGateway(t)

	slowConn := &blockingConn{started: make(chan struct{}), release: make(chan struct{})}
	defer close(slowConn.release)
	healthyConn := &fakeConn{}

	slow := NewSubscriber(slowConn, "", actor.CapabilityPublic, 1)
	healthy := NewSubscriber(healthyConn, "", actor.CapabilityPublic, 8)
	defer slow.Close()
	defer healthy.Close()

	gw.Join("ship-1", slow)
	gw.Join("ship-1", healthy)

	// the slow pump is now stuck inside its first write
	<-slowConn.started

	// one event parks in the queue (cap 1), the next overflows it
	gw.PublishPosition("ship-1", testSnapshot(0.1))
	gw.PublishPosition("ship-1", testSnapshot(0.2))

	waitFor(t, slow.Closed)

	// the healthy subscriber saw everything
	waitFor(t, func() bool { return len(healthyConn.locationUpdates()) == 2 })

	// and the room keeps working without the dropped member
	gw.PublishPosition("ship-1", testSnapshot(0.3))
	waitFor(t, func() bool { return len(healthyConn.locationUpdates()) == 3 })
}

func TestCloseRoomStopsBroadcasts(t *testing.T) {
	gw, _ := newTestGateway(t)

	conn := &fakeConn{}
	sub := NewSubscriber(conn, "", actor.CapabilityPublic, 8)
	defer sub.Close()

	gw.Join("ship-1", sub)
	gw.PublishPosition("ship-1", testSnapshot(0.9))
	waitFor(t, func() bool { return len(conn.locationUpdates()) == 1 })

	gw.CloseRoom("ship-1")
	gw.PublishPosition("ship-1", testSnapshot(0.95))
	gw.PublishStateChange("ship-1", contracts.WSTypeShipmentResumed, "", "")

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, conn.locationUpdates(), 1)
	assert.Empty(t, conn.stateChanges())
}

func TestLeaveGarbageCollectsRoom(t *testing.T) {
	gw, _ := newTestGateway(t)

	conn := &fakeConn{}
	sub := NewSubscriber(conn, "", actor.CapabilityPublic, 8)
	defer sub.Close()

	gw.Join("ship-1", sub)
	_, ok := gw.registry.get("ship-1")
	require.True(t, ok)

	gw.Leave("ship-1", sub)
	_, ok = gw.registry.get("ship-1")
	assert.False(t, ok)
}

func TestSubscriberCloseIsIdempotent(t *testing.T) {
	conn := &fakeConn{}
	sub := NewSubscriber(conn, "", actor.CapabilityPublic, 2)

	sub.Close()
	sub.Close()
	assert.True(t, sub.Closed())
	assert.False(t, sub.enqueue("late"))
}
