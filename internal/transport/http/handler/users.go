package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	userapp "github.com/alerta-api/internal/application/user"
	"github.com/alerta-api/internal/transport/http/middleware"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	svc userapp.Service
}

func NewUserHandler(svc userapp.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UploadImage stores the reporter image attached to fan-out notifications.
// Users may only replace their own image.
func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := chi.URLParam(r, "id")
	if userID != claims.UserID {
		writeError(w, http.StatusForbidden, "cannot modify another user's image")
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer f.Close()

	url, err := h.svc.UploadImage(r.Context(), userID, f, header.Header.Get("Content-Type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
