package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alerta-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper. ErrorCode carries the
// public codes (e.g. CUSTOMER_NOT_FOUND) mobile clients branch on.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP statuses and surfaces the
// public error code when the error carries one.
func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnprocessable):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, MessageEnvelope{Error: err.Error(), ErrorCode: domain.CodeOf(err)})
}
