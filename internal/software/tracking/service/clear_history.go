package service

import (
	"context"
)

// ClearHistory purges the shipment's archived location samples. Movement
// state, audit entries, and the shipment record itself are untouched.
func (service *trackingService) ClearHistory(ctx context.Context, shipmentID, actorID string) (int64, error) {
	ctx = service.logger.WithShipmentID(ctx, shipmentID)

	purged, err := service.history.PurgeForShipment(ctx, shipmentID)
	if err != nil {
		service.logger.Error(ctx, "history_purge_failed", "Failed to purge location history", err, map[string]any{
			"shipment_id": shipmentID,
			"actor_id":    actorID,
		})
		return 0, err
	}

	service.logger.Info(ctx, "history_purged", "Location history purged", map[string]any{
		"shipment_id": shipmentID,
		"actor_id":    actorID,
		"rows":        purged,
	})
	return purged, nil
}
