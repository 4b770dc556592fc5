package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler handles health-check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action == "ping" {
		writeSuccess(w, FlowEnvelope{Info: "pong"})
		return
	}
	writeJSON(w, http.StatusBadRequest, FlowEnvelope{Success: false, Errors: []string{"unknown action"}})
}
