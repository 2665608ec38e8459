package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alerta-api/internal/infrastructure/realtime"
	"github.com/alerta-api/internal/transport/http/middleware"
)

// WSHandler upgrades monitoring-dashboard connections onto the realtime hub.
type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler { return &WSHandler{hub: hub} }

// SubscribeAlerts joins the tenant-wide alert feed.
func (h *WSHandler) SubscribeAlerts(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	channel := "customers/" + customerID + "/alerts"
	if err := h.hub.Serve(w, r, channel); err != nil {
		writeError(w, http.StatusBadRequest, "websocket upgrade failed")
	}
}

// SubscribeCheckpoints joins one alert's checkpoint trail feed.
func (h *WSHandler) SubscribeCheckpoints(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	channel := "customers/" + customerID + "/alerts/" + chi.URLParam(r, "alertID") + "/checkpoints"
	if err := h.hub.Serve(w, r, channel); err != nil {
		writeError(w, http.StatusBadRequest, "websocket upgrade failed")
	}
}

// authorize restricts subscriptions to the actor's own tenant and monitored
// tenants.
func (h *WSHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	customerID := chi.URLParam(r, "customerID")
	if customerID == claims.CustomerID {
		return customerID, true
	}
	for _, id := range claims.MonitoredCustomerIDs {
		if id == customerID {
			return customerID, true
		}
	}
	writeError(w, http.StatusForbidden, "tenant not in scope")
	return "", false
}
