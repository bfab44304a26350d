package handler

import (
	"net/http"

	"ship-track/internal/domain/geo"
	"ship-track/internal/ports"
)

type repositionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type rerouteRequest struct {
	Waypoints []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"waypoints"`
	Reason string `json:"reason"`
}

// ----- Handler: POST /shipments/{shipment_id}/reposition -----

func (handler *TrackingHTTPHandler) handleReposition(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID, ok := handler.shipmentIDFromPath(ctx, w, r)
	if !ok {
		return
	}
	actorID, ok := handler.actorFromClaims(ctx, w, r)
	if !ok {
		return
	}

	var req repositionRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}
	if _, err := geo.NewCoordinate(req.Latitude, req.Longitude); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	err := handler.svc.Reposition(ctx, ports.RepositionInput{
		ShipmentID: shipmentID,
		ActorID:    actorID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{
		"shipment_id": shipmentID,
		"message":     "Shipment repositioned",
	})
}

// ----- Handler: POST /shipments/{shipment_id}/reroute -----

func (handler *TrackingHTTPHandler) handleReroute(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID, ok := handler.shipmentIDFromPath(ctx, w, r)
	if !ok {
		return
	}
	actorID, ok := handler.actorFromClaims(ctx, w, r)
	if !ok {
		return
	}

	var req rerouteRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}
	if len(req.Waypoints) == 0 {
		handler.httpError(ctx, w, http.StatusBadRequest, "waypoints must not be empty", nil)
		return
	}

	waypoints := make([]geo.Coordinate, 0, len(req.Waypoints))
	for _, wp := range req.Waypoints {
		c, err := geo.NewCoordinate(wp.Latitude, wp.Longitude)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
			return
		}
		waypoints = append(waypoints, c)
	}

	err := handler.svc.Reroute(ctx, ports.RerouteInput{
		ShipmentID: shipmentID,
		ActorID:    actorID,
		Waypoints:  waypoints,
		Reason:     req.Reason,
	})
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{
		"shipment_id": shipmentID,
		"message":     "Shipment rerouted",
	})
}
