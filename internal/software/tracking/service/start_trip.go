package service

import (
	"context"
	"fmt"
	"time"

	"ship-track/internal/domain/route"
	"ship-track/internal/domain/shipment"
	"ship-track/internal/general/contracts"
	"ship-track/internal/movement"
	"ship-track/internal/ports"
	"ship-track/internal/simulator"
)

// StartTrip validates the shipment can begin moving, creates its movement
// state and simulator, flips the directory status to IN_TRANSIT, and starts
// the tick loop.
func (service *trackingService) StartTrip(ctx context.Context, in ports.StartTripInput) (*shipment.MovementState, error) {
	ctx = service.logger.WithShipmentID(ctx, in.ShipmentID)
	corrID := generateCorrelationID()

	status, err := service.directory.GetStatus(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}
	if !status.CanStartTrip() {
		return nil, fmt.Errorf("%w: cannot start trip from status %s", movement.ErrPreconditionFailed, status)
	}

	waypoints, err := service.directory.GetRoute(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}
	r, err := route.New(waypoints)
	if err != nil {
		return nil, err
	}

	avgKMH, err := service.directory.GetAverageSpeedKMH(ctx, in.ShipmentID)
	if err != nil || avgKMH <= 0 {
		avgKMH = service.defaultSpeedKMH
	}

	// explicit duration wins; otherwise derive it from distance at the
	// shipment's average speed
	duration := time.Duration(in.DurationDays * 24 * float64(time.Hour))
	if duration <= 0 && avgKMH > 0 {
		duration = time.Duration(r.TotalDistanceKM() / avgKMH * float64(time.Hour))
	}

	state, err := service.store.Create(in.ShipmentID, in.ActorID)
	if err != nil {
		return nil, err
	}

	sim := simulator.New(in.ShipmentID, r, avgKMH, duration, true)
	if err := service.sims.Start(service.appCtx, sim); err != nil {
		service.store.Remove(in.ShipmentID)
		return nil, movement.ErrStateExists
	}

	now := time.Now().UTC()
	entry, err := shipment.NewAuditEntry(in.ShipmentID, in.ActorID, shipment.ActionStart, "")
	if err != nil {
		service.rollbackStart(in.ShipmentID)
		return nil, err
	}
	if err := service.persistTransition(ctx, in.ShipmentID, shipment.StatusInTransit, entry, now); err != nil {
		service.rollbackStart(in.ShipmentID)
		service.logger.Error(ctx, "trip_start_persist_failed", "Failed to persist trip start", err, map[string]any{
			"shipment_id": in.ShipmentID,
			"request_id":  corrID,
		})
		return nil, err
	}

	statusMsg := contracts.MovementStatusMessage{
		ShipmentID: in.ShipmentID,
		Status:     shipment.StatusInTransit.String(),
		ActorID:    in.ActorID,
		Timestamp:  now,
		Envelope: contracts.Envelope{
			Producer:      "tracking-service",
			CorrelationID: corrID,
			SentAt:        now,
		},
	}
	if err := service.publishMovementStatus(ctx, statusMsg); err != nil {
		service.logger.Error(ctx, "movement_status_publish_failed", "Failed to publish trip start to RabbitMQ", err, map[string]any{
			"shipment_id": in.ShipmentID,
			"request_id":  corrID,
		})
	}

	service.logger.Info(ctx, "trip_started", "Trip started", map[string]any{
		"shipment_id":    in.ShipmentID,
		"actor_id":       in.ActorID,
		"total_km":       r.TotalDistanceKM(),
		"duration_hours": duration.Hours(),
		"request_id":     corrID,
	})
	return state, nil
}

// rollbackStart undoes the in-memory half of a trip start whose durable half
// failed.
func (service *trackingService) rollbackStart(shipmentID string) {
	_ = service.sims.Stop(shipmentID)
	service.store.Remove(shipmentID)
}
