package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	alertapp "github.com/alerta-api/internal/application/alert"
	"github.com/alerta-api/internal/domain"
	jwtinfra "github.com/alerta-api/internal/infrastructure/jwt"
	"github.com/alerta-api/internal/pkg/validate"
	"github.com/alerta-api/internal/transport/http/middleware"
)

// AlertHandler handles alert lifecycle endpoints.
type AlertHandler struct {
	svc alertapp.Service
}

func NewAlertHandler(svc alertapp.Service) *AlertHandler { return &AlertHandler{svc: svc} }

// scope returns the tenant ids the authenticated user may read: their own
// tenant plus the monitored set.
func scope(claims *jwtinfra.Claims) []string {
	return append([]string{claims.CustomerID}, claims.MonitoredCustomerIDs...)
}

// requestedCustomer resolves the effective tenant for single-tenant reads:
// the customer_id query parameter when present and within the actor's scope,
// the actor's own tenant otherwise. Out-of-scope requests surface as
// CUSTOMER_NOT_FOUND, matching the state-change authorization behavior.
func requestedCustomer(r *http.Request, claims *jwtinfra.Claims) (string, error) {
	requested := r.URL.Query().Get("customer_id")
	if requested == "" || requested == claims.CustomerID {
		return claims.CustomerID, nil
	}
	for _, id := range claims.MonitoredCustomerIDs {
		if id == requested {
			return requested, nil
		}
	}
	return "", domain.Coded(domain.CodeCustomerNotFound, domain.ErrUnprocessable)
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" {
		req.CustomerID = claims.CustomerID
	}
	if req.UserID == "" {
		req.UserID = claims.UserID
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := parseAlertFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts, err := h.svc.FindAll(r.Context(), scope(claims), filter)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	customerID, err := requestedCustomer(r, claims)
	if err != nil {
		httpError(w, err)
		return
	}
	a, err := h.svc.FindOne(r.Context(), chi.URLParam(r, "id"), customerID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AlertHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ChangeAlertStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" {
		req.CustomerID = claims.CustomerID
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.ChangeState(r.Context(), chi.URLParam(r, "id"), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AlertHandler) CreateCheckpoint(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateCheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" {
		req.CustomerID = claims.CustomerID
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	cp, err := h.svc.CreateCheckpoint(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cp)
}

func (h *AlertHandler) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	customerID, err := requestedCustomer(r, claims)
	if err != nil {
		httpError(w, err)
		return
	}
	checkpoints, err := h.svc.FindAllCheckpoints(r.Context(), chi.URLParam(r, "id"), customerID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkpoints)
}

func (h *AlertHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListAlertTypes(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *AlertHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	states, err := h.svc.ListAlertStates(r.Context(), scope(claims))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func parseAlertFilter(r *http.Request) (domain.AlertFilter, error) {
	var filter domain.AlertFilter
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	if v := q.Get("alert_type_id"); v != "" {
		filter.AlertTypeID = &v
	}
	if v := q.Get("alert_state_id"); v != "" {
		filter.AlertStateID = &v
	}
	return filter, nil
}
