package handler

import (
	"net/http"

	"ship-track/internal/ports"
)

type startTripRequest struct {
	DurationDays float64 `json:"duration_days"`
}

type startTripResponse struct {
	ShipmentID string `json:"shipment_id"`
	IsMoving   bool   `json:"is_moving"`
	Message    string `json:"message"`
}

// ----- Handler: POST /shipments/{shipment_id}/start -----

func (handler *TrackingHTTPHandler) handleStartTrip(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID, ok := handler.shipmentIDFromPath(ctx, w, r)
	if !ok {
		return
	}
	actorID, ok := handler.actorFromClaims(ctx, w, r)
	if !ok {
		return
	}

	var req startTripRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}
	if req.DurationDays < 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "duration_days must be non-negative", nil)
		return
	}

	state, err := handler.svc.StartTrip(ctx, ports.StartTripInput{
		ShipmentID:   shipmentID,
		ActorID:      actorID,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusCreated, startTripResponse{
		ShipmentID: state.ShipmentID,
		IsMoving:   state.IsMoving,
		Message:    "Trip started successfully",
	})
}
