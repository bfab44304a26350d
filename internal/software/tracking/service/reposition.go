package service

import (
	"context"
	"time"

	"ship-track/internal/domain/geo"
	"ship-track/internal/domain/shipment"
	"ship-track/internal/movement"
	"ship-track/internal/ports"
)

// Reposition snaps the given point onto the active route and seeks the
// simulator there. A seek past the end is the arrival: it goes through the
// same one-shot delivery path as a natural tick crossing.
func (service *trackingService) Reposition(ctx context.Context, in ports.RepositionInput) error {
	ctx = service.logger.WithShipmentID(ctx, in.ShipmentID)
	corrID := generateCorrelationID()

	target, err := geo.NewCoordinate(in.Latitude, in.Longitude)
	if err != nil {
		return err
	}

	sim, ok := service.sims.Get(in.ShipmentID)
	if !ok {
		return movement.ErrStateNotFound
	}
	if err := service.store.RecordAction(in.ShipmentID, in.ActorID, shipment.ActionReposition, ""); err != nil {
		return err
	}

	if in.SpeedKMH != nil {
		sim.CalibrateSpeed(*in.SpeedKMH)
	}
	progress, arrived := sim.RepositionTo(target)
	snap := sim.Evaluate()
	service.gateway.PublishPosition(in.ShipmentID, snap)

	entry, err := shipment.NewAuditEntry(in.ShipmentID, in.ActorID, shipment.ActionReposition, "")
	if err != nil {
		return err
	}
	if err := service.persistTransition(ctx, in.ShipmentID, "", entry, time.Now().UTC()); err != nil {
		service.logger.Error(ctx, "reposition_persist_failed", "Failed to persist reposition audit", err, map[string]any{
			"shipment_id": in.ShipmentID,
			"request_id":  corrID,
		})
		return err
	}

	details := map[string]any{
		"shipment_id": in.ShipmentID,
		"actor_id":    in.ActorID,
		"lat":         target.Latitude,
		"lng":         target.Longitude,
		"progress":    progress,
		"request_id":  corrID,
	}
	if in.SpeedKMH != nil {
		details["reported_speed_kmh"] = *in.SpeedKMH
	}
	if in.HeadingDegrees != nil {
		details["reported_heading_degrees"] = *in.HeadingDegrees
	}
	service.logger.Info(ctx, "shipment_repositioned", "Shipment repositioned", details)

	// the worker's next tick sees a terminal snapshot and exits without
	// firing the arrival callback; the seek owns that transition
	if arrived {
		_ = service.sims.Stop(in.ShipmentID)
		service.handleArrival(in.ShipmentID, snap)
	}
	return nil
}
