package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ship-track/internal/domain/actor"
	"ship-track/internal/general/contracts"
	"ship-track/internal/general/jwt"
	"ship-track/internal/movement"
	"ship-track/internal/ports"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler upgrades tracking connections and dispatches inbound events to
// the gateway and the movement control surface.
type WSHandler struct {
	gateway *Gateway
	jwtMgr  *jwt.Manager
}

// NewWSHandler wires the WebSocket endpoint.
func NewWSHandler(g *Gateway, jwtMgr *jwt.Manager) *WSHandler {
	return &WSHandler{gateway: g, jwtMgr: jwtMgr}
}

// HandleTrack serves GET /ws/track/{shipment_id}. The connection's
// capability comes from its token; anonymous connections track as PUBLIC
// (read-only), mutating events require ADMIN.
func (h *WSHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	capability := actor.CapabilityUnauthenticated
	actorID := ""
	if raw, err := jwt.FromAuthorization(r); err == nil {
		capability = h.jwtMgr.CapabilityOf(raw)
		if claims, err := h.jwtMgr.ParseAndValidate(raw); err == nil {
			actorID = claims.Subject
		}
	}
	// anonymous and unauthenticated connections track read-only
	if capability == actor.CapabilityUnauthenticated {
		capability = actor.CapabilityPublic
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := NewSubscriber(conn, actorID, capability, h.gateway.QueueSize())
	joined := make(map[string]struct{})

	defer func() {
		for shipmentID := range joined {
			h.gateway.Leave(shipmentID, sub)
		}
		sub.Close()
	}()

	// auto-join when the path carries a shipment id
	if shipmentID := strings.TrimSpace(r.PathValue("shipment_id")); shipmentID != "" {
		h.gateway.Join(shipmentID, sub)
		joined[shipmentID] = struct{}{}
	}

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if sub.Closed() {
			return
		}

		var ev contracts.WSClientEvent
		if err := json.Unmarshal(frame, &ev); err != nil {
			h.reject(sub, "malformed event")
			continue
		}

		h.dispatch(r, sub, joined, ev)
	}
}

func (h *WSHandler) dispatch(r *http.Request, sub *Subscriber, joined map[string]struct{}, ev contracts.WSClientEvent) {
	switch ev.Type {
	case contracts.WSTypeJoinShipment:
		var p contracts.WSJoinShipment
		if err := json.Unmarshal(ev.Data, &p); err != nil || strings.TrimSpace(p.ShipmentID) == "" {
			h.reject(sub, "join_shipment requires shipment_id")
			return
		}
		h.gateway.Join(p.ShipmentID, sub)
		joined[p.ShipmentID] = struct{}{}

	case contracts.WSTypeLeaveShipment:
		var p contracts.WSJoinShipment
		if err := json.Unmarshal(ev.Data, &p); err != nil || strings.TrimSpace(p.ShipmentID) == "" {
			h.reject(sub, "leave_shipment requires shipment_id")
			return
		}
		h.gateway.Leave(p.ShipmentID, sub)
		delete(joined, p.ShipmentID)

	case contracts.WSTypeUpdateLocation:
		if !h.requireAdmin(sub) {
			return
		}
		var p contracts.WSUpdateLocation
		if err := json.Unmarshal(ev.Data, &p); err != nil || strings.TrimSpace(p.ShipmentID) == "" {
			h.reject(sub, "update_location requires shipment_id and coordinates")
			return
		}
		err := h.gateway.control.Reposition(r.Context(), ports.RepositionInput{
			ShipmentID:     p.ShipmentID,
			ActorID:        sub.ActorID(),
			Latitude:       p.Latitude,
			Longitude:      p.Longitude,
			SpeedKMH:       p.SpeedKMH,
			HeadingDegrees: p.Heading,
		})
		h.replyOnError(sub, err)

	case contracts.WSTypeIntercept:
		if !h.requireAdmin(sub) {
			return
		}
		var p contracts.WSInterceptClear
		if err := json.Unmarshal(ev.Data, &p); err != nil || strings.TrimSpace(p.ShipmentID) == "" {
			h.reject(sub, "intercept requires shipment_id")
			return
		}
		_, err := h.gateway.control.Intercept(r.Context(), p.ShipmentID, sub.ActorID(), p.Reason)
		h.replyOnError(sub, err)

	case contracts.WSTypeClear:
		if !h.requireAdmin(sub) {
			return
		}
		var p contracts.WSInterceptClear
		if err := json.Unmarshal(ev.Data, &p); err != nil || strings.TrimSpace(p.ShipmentID) == "" {
			h.reject(sub, "clear requires shipment_id")
			return
		}
		_, err := h.gateway.control.Clear(r.Context(), p.ShipmentID, sub.ActorID(), p.Reason)
		h.replyOnError(sub, err)

	default:
		h.reject(sub, "unknown event type")
	}
}

// requireAdmin rejects a mutating event from a non-admin connection with an
// explicit error event; the connection stays open.
func (h *WSHandler) requireAdmin(sub *Subscriber) bool {
	if sub.Capability().CanMutate() {
		return true
	}
	h.reject(sub, "admin capability required")
	return false
}

func (h *WSHandler) replyOnError(sub *Subscriber, err error) {
	switch {
	case err == nil:
	case errors.Is(err, movement.ErrPreconditionFailed),
		errors.Is(err, movement.ErrStateNotFound):
		h.reject(sub, err.Error())
	default:
		h.reject(sub, "internal error")
	}
}

func (h *WSHandler) reject(sub *Subscriber, msg string) {
	sub.enqueue(contracts.WSError{Type: contracts.WSTypeError, Error: msg})
}
