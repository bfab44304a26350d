package service

import (
	"context"
	"time"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/movement"
	"ship-track/internal/ports"
)

// Reroute replaces the remaining route: the current position becomes the new
// origin, progress restarts at zero, and the trip duration is recomputed from
// the new distance. Playback state (running or paused) carries over.
func (service *trackingService) Reroute(ctx context.Context, in ports.RerouteInput) error {
	ctx = service.logger.WithShipmentID(ctx, in.ShipmentID)
	corrID := generateCorrelationID()

	for _, wp := range in.Waypoints {
		if err := wp.Validate(); err != nil {
			return err
		}
	}

	sim, ok := service.sims.Get(in.ShipmentID)
	if !ok {
		return movement.ErrStateNotFound
	}
	if err := service.store.RecordAction(in.ShipmentID, in.ActorID, shipment.ActionReroute, in.Reason); err != nil {
		return err
	}

	if err := sim.Reroute(in.Waypoints); err != nil {
		return err
	}
	service.gateway.PublishPosition(in.ShipmentID, sim.Evaluate())

	entry, err := shipment.NewAuditEntry(in.ShipmentID, in.ActorID, shipment.ActionReroute, in.Reason)
	if err != nil {
		return err
	}
	if err := service.persistTransition(ctx, in.ShipmentID, "", entry, time.Now().UTC()); err != nil {
		service.logger.Error(ctx, "reroute_persist_failed", "Failed to persist reroute audit", err, map[string]any{
			"shipment_id": in.ShipmentID,
			"request_id":  corrID,
		})
		return err
	}

	service.logger.Info(ctx, "shipment_rerouted", "Shipment rerouted", map[string]any{
		"shipment_id": in.ShipmentID,
		"actor_id":    in.ActorID,
		"waypoints":   len(in.Waypoints),
		"request_id":  corrID,
	})
	return nil
}
