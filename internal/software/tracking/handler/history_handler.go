package handler

import (
	"net/http"
)

type clearHistoryResponse struct {
	ShipmentID string `json:"shipment_id"`
	Purged     int64  `json:"purged"`
}

// ----- Handler: DELETE /shipments/{shipment_id}/history -----

func (handler *TrackingHTTPHandler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID, ok := handler.shipmentIDFromPath(ctx, w, r)
	if !ok {
		return
	}
	actorID, ok := handler.actorFromClaims(ctx, w, r)
	if !ok {
		return
	}

	purged, err := handler.svc.ClearHistory(ctx, shipmentID, actorID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, clearHistoryResponse{
		ShipmentID: shipmentID,
		Purged:     purged,
	})
}
