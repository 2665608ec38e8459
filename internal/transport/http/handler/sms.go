package handler

import (
	"encoding/json"
	"net/http"

	alertapp "github.com/alerta-api/internal/application/alert"
)

// SMSHandler handles the inbound SMS gateway webhook.
type SMSHandler struct {
	svc alertapp.Service
}

func NewSMSHandler(svc alertapp.Service) *SMSHandler { return &SMSHandler{svc: svc} }

// Ingest accepts a raw gateway message, decodes it and runs the alert
// creation pipeline on behalf of the resolved reporter.
func (h *SMSHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.IngestSMS(r.Context(), body.Message)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
