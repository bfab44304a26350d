package service

import (
	"context"
	"time"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/general/contracts"
)

// Intercept pauses a moving shipment: flips isMoving=false, freezes its
// simulator, and pushes the frozen snapshot plus a shipment_paused event to
// the room before persisting.
func (service *trackingService) Intercept(ctx context.Context, shipmentID, actorID, reason string) (*shipment.MovementState, error) {
	ctx = service.logger.WithShipmentID(ctx, shipmentID)
	corrID := generateCorrelationID()

	state, err := service.store.Intercept(shipmentID, actorID, reason)
	if err != nil {
		return nil, err
	}

	if sim, ok := service.sims.Get(shipmentID); ok {
		sim.Pause()
		service.gateway.PublishPosition(shipmentID, sim.Evaluate())
	}
	service.gateway.PublishStateChange(shipmentID, contracts.WSTypeShipmentPaused, actorID, reason)

	now := time.Now().UTC()
	entry, err := shipment.NewAuditEntry(shipmentID, actorID, shipment.ActionIntercept, reason)
	if err != nil {
		return nil, err
	}
	if err := service.persistTransition(ctx, shipmentID, shipment.StatusIntercepted, entry, now); err != nil {
		service.logger.Error(ctx, "intercept_persist_failed", "Failed to persist intercept", err, map[string]any{
			"shipment_id": shipmentID,
			"request_id":  corrID,
		})
		return nil, err
	}

	service.logger.Info(ctx, "shipment_intercepted", "Shipment intercepted", map[string]any{
		"shipment_id": shipmentID,
		"actor_id":    actorID,
		"reason":      reason,
		"request_id":  corrID,
	})
	return state, nil
}
