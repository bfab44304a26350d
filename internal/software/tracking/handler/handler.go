package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ship-track/internal/domain/actor"
	"ship-track/internal/gateway"
	"ship-track/internal/general/jwt"
	"ship-track/internal/general/logger"
	"ship-track/internal/general/postgres"
	"ship-track/internal/movement"
	"ship-track/internal/ports"
)

// TrackingHTTPHandler adapts HTTP requests to the MovementControlService.
type TrackingHTTPHandler struct {
	svc    ports.MovementControlService
	logger *logger.Logger
	auth   *jwt.Manager
	ws     *gateway.WSHandler
}

// NewTrackingHTTPHandler wires an HTTP handler around the MovementControlService.
func NewTrackingHTTPHandler(
	svc ports.MovementControlService,
	logger *logger.Logger,
	auth *jwt.Manager,
	ws *gateway.WSHandler,
) *TrackingHTTPHandler {
	return &TrackingHTTPHandler{svc: svc, logger: logger, auth: auth, ws: ws}
}

// RegisterRoutes mounts tracking endpoints on the provided mux.
func (handler *TrackingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /shipments/{shipment_id}/start",
		jwt.AuthMiddlewareFunc(handler.auth, actor.CapabilityAdmin)(handler.handleStartTrip),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/intercept",
		jwt.AuthMiddlewareFunc(handler.auth, actor.CapabilityAdmin)(handler.handleIntercept),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/clear",
		jwt.AuthMiddlewareFunc(handler.auth, actor.CapabilityAdmin)(handler.handleClear),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/reposition",
		jwt.AuthMiddlewareFunc(handler.auth, actor.CapabilityAdmin)(handler.handleReposition),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/reroute",
		jwt.AuthMiddlewareFunc(handler.auth, actor.CapabilityAdmin)(handler.handleReroute),
	)
	mux.HandleFunc("DELETE /shipments/{shipment_id}/history",
		jwt.AuthMiddlewareFunc(handler.auth, actor.CapabilityAdmin)(handler.handleClearHistory),
	)

	// WebSocket authenticates inside the upgrade; anonymous connections get
	// read-only PUBLIC access
	mux.HandleFunc("GET /ws/track/{shipment_id}", handler.ws.HandleTrack)

	mux.HandleFunc("GET /tracking/health", handler.handleHealth)
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

// handleHealth reports liveness.
func (handler *TrackingHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "tracking-service",
	})
}

// ----- token endpoint -----

type TokenRequest struct {
	ActorID    string `json:"actor_id"`
	Capability string `json:"capability"`
}

type TokenResponse struct {
	Token      string           `json:"token"`
	ExpiresAt  time.Time        `json:"expires_at"`
	ActorID    string           `json:"actor_id"`
	Capability actor.Capability `json:"capability"`
}

// handleCreateToken mints JWT tokens for testing.
func (handler *TrackingHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.ActorID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "actor_id is required", nil)
		return
	}
	capability, err := actor.ParseCapability(req.Capability)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "capability must be ADMIN or PUBLIC", err)
		return
	}

	tokenString, claims, err := handler.auth.IssueActorToken(req.ActorID, capability)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"actor_id": req.ActorID, "capability": capability.String()})

	handler.jsonResponse(ctx, w, http.StatusCreated, TokenResponse{
		Token:      tokenString,
		ExpiresAt:  claims.ExpiresAt.Time,
		ActorID:    req.ActorID,
		Capability: capability,
	})
}

// ----- general helpers -----

// jsonResponse takes any type of data and encodes it to the HTTP response.
func (handler *TrackingHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *TrackingHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusConflict {
		action = "precondition_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps movement/store errors onto HTTP statuses.
func (handler *TrackingHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, movement.ErrPreconditionFailed):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, movement.ErrStateNotFound), errors.Is(err, postgres.ErrShipmentNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

// shipmentIDFromPath fetches and checks the path parameter shared by every
// control route.
func (handler *TrackingHTTPHandler) shipmentIDFromPath(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	shipmentID := strings.TrimSpace(r.PathValue("shipment_id"))
	if shipmentID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing shipment_id in path", nil)
		return "", false
	}
	return shipmentID, true
}

// decodeStrict decodes a JSON body, rejecting unknown fields and oversized
// payloads.
func (handler *TrackingHTTPHandler) decodeStrict(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON body", err)
		return false
	}
	return true
}

// actorFromClaims pulls the authenticated actor out of the request.
func (handler *TrackingHTTPHandler) actorFromClaims(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return "", false
	}
	actorID := strings.TrimSpace(claims.Subject)
	if actorID == "" {
		handler.httpError(ctx, w, http.StatusUnauthorized, "token has no subject", nil)
		return "", false
	}
	return actorID, true
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *TrackingHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
