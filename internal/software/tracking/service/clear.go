package service

import (
	"context"
	"time"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/general/contracts"
)

// Clear resumes an intercepted shipment. The pause window is excluded from
// the simulator's elapsed-time accounting, so the first post-resume snapshot
// matches the last pre-pause one.
func (service *trackingService) Clear(ctx context.Context, shipmentID, actorID, reason string) (*shipment.MovementState, error) {
	ctx = service.logger.WithShipmentID(ctx, shipmentID)
	corrID := generateCorrelationID()

	state, err := service.store.Clear(shipmentID, actorID, reason)
	if err != nil {
		return nil, err
	}

	if sim, ok := service.sims.Get(shipmentID); ok {
		sim.Resume()
		service.gateway.PublishPosition(shipmentID, sim.Evaluate())
	}
	service.gateway.PublishStateChange(shipmentID, contracts.WSTypeShipmentResumed, actorID, reason)

	now := time.Now().UTC()
	entry, err := shipment.NewAuditEntry(shipmentID, actorID, shipment.ActionClear, reason)
	if err != nil {
		return nil, err
	}
	if err := service.persistTransition(ctx, shipmentID, shipment.StatusInTransit, entry, now); err != nil {
		service.logger.Error(ctx, "clear_persist_failed", "Failed to persist clear", err, map[string]any{
			"shipment_id": shipmentID,
			"request_id":  corrID,
		})
		return nil, err
	}

	service.logger.Info(ctx, "shipment_cleared", "Shipment cleared to resume", map[string]any{
		"shipment_id": shipmentID,
		"actor_id":    actorID,
		"reason":      reason,
		"request_id":  corrID,
	})
	return state, nil
}
