package handler

import (
	"net/http"
	"time"
)

type interceptRequest struct {
	Reason string `json:"reason"`
}

type movementStateResponse struct {
	ShipmentID string     `json:"shipment_id"`
	IsMoving   bool       `json:"is_moving"`
	PausedBy   string     `json:"paused_by,omitempty"`
	PausedAt   *time.Time `json:"paused_at,omitempty"`
	ResumedAt  *time.Time `json:"resumed_at,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ----- Handler: POST /shipments/{shipment_id}/intercept -----

func (handler *TrackingHTTPHandler) handleIntercept(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID, ok := handler.shipmentIDFromPath(ctx, w, r)
	if !ok {
		return
	}
	actorID, ok := handler.actorFromClaims(ctx, w, r)
	if !ok {
		return
	}

	var req interceptRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	state, err := handler.svc.Intercept(ctx, shipmentID, actorID, req.Reason)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, movementStateResponse{
		ShipmentID: state.ShipmentID,
		IsMoving:   state.IsMoving,
		PausedBy:   state.PausedBy,
		PausedAt:   state.PausedAt,
		ResumedAt:  state.ResumedAt,
		Reason:     state.Reason,
		UpdatedAt:  state.UpdatedAt,
	})
}

// ----- Handler: POST /shipments/{shipment_id}/clear -----

func (handler *TrackingHTTPHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID, ok := handler.shipmentIDFromPath(ctx, w, r)
	if !ok {
		return
	}
	actorID, ok := handler.actorFromClaims(ctx, w, r)
	if !ok {
		return
	}

	var req interceptRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	state, err := handler.svc.Clear(ctx, shipmentID, actorID, req.Reason)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, movementStateResponse{
		ShipmentID: state.ShipmentID,
		IsMoving:   state.IsMoving,
		PausedBy:   state.PausedBy,
		PausedAt:   state.PausedAt,
		ResumedAt:  state.ResumedAt,
		Reason:     state.Reason,
		UpdatedAt:  state.UpdatedAt,
	})
}
