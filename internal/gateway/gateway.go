package gateway

import (
	"context"
	"encoding/json"
	"time"

	"ship-track/internal/general/contracts"
	"ship-track/internal/general/logger"
	"ship-track/internal/movement"
	"ship-track/internal/ports"
	"ship-track/internal/simulator"
)

// Gateway keeps every connected observer's view consistent with the
// server-authoritative movement state. It owns the room registry, implements
// simulator.PositionSink, and mirrors every event to the message broker so
// sibling services can subscribe without a socket.
type Gateway struct {
	registry *Registry
	store    *movement.Store
	sims     *simulator.Manager
	logger   *logger.Logger

	control   ports.MovementControlService
	queueSize int

	// broker mirror: fan-out to AMQP happens on this pump, never inline
	// with a simulator tick
	pub      ports.EventPublisher
	outbound chan brokerEvent
}

type brokerEvent struct {
	exchange   string
	routingKey string
	body       []byte
}

// NewGateway wires the fan-out side. The simulator registry and the control
// service are attached after construction (both sit downstream of the
// gateway's sink role).
func NewGateway(store *movement.Store, pub ports.EventPublisher, queueSize int, log *logger.Logger) *Gateway {
	return &Gateway{
		registry:  newRegistry(log),
		store:     store,
		logger:    log,
		queueSize: queueSize,
		pub:       pub,
		outbound:  make(chan brokerEvent, 256),
	}
}

// AttachSimulators installs the registry used for initial join snapshots.
func (g *Gateway) AttachSimulators(sims *simulator.Manager) { g.sims = sims }

// SetControl attaches the mutating surface used by admin WS events.
func (g *Gateway) SetControl(svc ports.MovementControlService) { g.control = svc }

// QueueSize returns the per-subscriber bound.
func (g *Gateway) QueueSize() int { return g.queueSize }

// Start launches the broker pump; it drains until ctx is cancelled.
func (g *Gateway) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case ev := <-g.outbound:
				if err := g.pub.Publish(ev.exchange, ev.routingKey, ev.body); err != nil {
					g.logger.Error(ctx, "broker_publish_failed", "Failed to mirror event to broker", err, map[string]any{
						"exchange": ev.exchange, "routing_key": ev.routingKey,
					})
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// mirror offers an event to the broker pump without blocking the caller.
func (g *Gateway) mirror(exchange, routingKey string, msg any) {
	if g.pub == nil {
		return
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case g.outbound <- brokerEvent{exchange: exchange, routingKey: routingKey, body: body}:
	default:
		g.logger.Info(context.Background(), "broker_mirror_dropped",
			"Broker pump saturated; event dropped", map[string]any{"exchange": exchange})
	}
}

// Join adds a subscriber to a shipment's room, creating the room lazily, and
// immediately delivers the initial joined_shipment event so no subscriber is
// ever left without state.
func (g *Gateway) Join(shipmentID string, sub *Subscriber) {
	room := g.registry.getOrCreate(shipmentID)
	room.add(sub)

	joined := contracts.WSJoinedShipment{
		Type:       contracts.WSTypeJoinedShipment,
		ShipmentID: shipmentID,
		Timestamp:  time.Now().UTC(),
	}
	if state, err := g.store.Get(shipmentID); err == nil {
		joined.IsMoving = state.IsMoving
	}
	if g.sims != nil {
		if sim, ok := g.sims.Get(shipmentID); ok {
			snap := sim.Evaluate()
			joined.CurrentLocation = contracts.GeoPoint{Lat: snap.Position.Latitude, Lng: snap.Position.Longitude}
			joined.Progress = snap.Progress
			joined.HasArrived = snap.HasArrived
		}
	}

	if !sub.enqueue(joined) {
		room.remove(sub)
		sub.Close()
	}
}

// Leave removes a subscriber; a drained room is garbage-collected. Public
// tracking continues regardless of which capability leaves last.
func (g *Gateway) Leave(shipmentID string, sub *Subscriber) {
	room, ok := g.registry.get(shipmentID)
	if !ok {
		return
	}
	if room.remove(sub) == 0 {
		g.registry.removeIfEmpty(shipmentID)
	}
}

// PublishPosition fans one snapshot out to all room members, admin and
// public alike. It is the simulator.PositionSink implementation: called on
// every tick while moving, and once, synchronously, on every
// pause/resume/reroute/reposition transition.
func (g *Gateway) PublishPosition(shipmentID string, snap simulator.Snapshot) {
	ev := contracts.WSLocationUpdate{
		Type:             contracts.WSTypeLocationUpdate,
		ShipmentID:       shipmentID,
		Location:         contracts.GeoPoint{Lat: snap.Position.Latitude, Lng: snap.Position.Longitude},
		BearingDegrees:   snap.BearingDegrees,
		Progress:         snap.Progress,
		RemainingKM:      snap.RemainingKM,
		SpeedKMH:         snap.SpeedKMH,
		ETA:              snap.ETA,
		RemainingMinutes: snap.RemainingMinutes,
		IsPaused:         snap.IsPaused,
		HasArrived:       snap.HasArrived,
		Timestamp:        snap.ComputedAt,
	}

	if room, ok := g.registry.get(shipmentID); ok {
		room.broadcast(ev, nil)
	}

	g.mirror(contracts.ExchangeLocationFanout, "", contracts.LocationUpdateMessage{
		ShipmentID:     shipmentID,
		Location:       ev.Location,
		SpeedKMH:       snap.SpeedKMH,
		HeadingDegrees: snap.BearingDegrees,
		Progress:       snap.Progress,
		Timestamp:      snap.ComputedAt,
		Envelope:       contracts.Envelope{Producer: "tracking-service", SentAt: time.Now().UTC()},
	})
}

// PublishStateChange fans a movement transition out to the room. The
// actor/reason pair rides only on the admin variant; public members receive
// the redacted form.
func (g *Gateway) PublishStateChange(shipmentID, eventType, actorID, reason string) {
	now := time.Now().UTC()

	public := contracts.WSStateChange{
		Type:       eventType,
		ShipmentID: shipmentID,
		Timestamp:  now,
	}
	admin := public
	admin.ActorID = actorID
	admin.Reason = reason

	if room, ok := g.registry.get(shipmentID); ok {
		room.broadcast(public, admin)
	}

	g.mirror(contracts.ExchangeShipmentTopic, contracts.RouteShipmentStatusPrefix+eventType,
		contracts.MovementStatusMessage{
			ShipmentID: shipmentID,
			Status:     eventType,
			ActorID:    actorID,
			Reason:     reason,
			Timestamp:  now,
			Envelope:   contracts.Envelope{Producer: "tracking-service", SentAt: now},
		})
}

// CloseRoom marks a terminal shipment's room closed-for-writes. Members may
// keep draining; no further ticks are accepted.
func (g *Gateway) CloseRoom(shipmentID string) {
	if room, ok := g.registry.get(shipmentID); ok {
		room.markClosed()
	}
}
