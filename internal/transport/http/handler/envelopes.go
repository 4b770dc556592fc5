package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/course-agent-api/internal/domain"
)

// FlowEnvelope is the generic response wrapper. Errors are complete
// user-presentable sentences; Redirect names the page the client
// should move to next.
type FlowEnvelope struct {
	Success  bool        `json:"success"`
	Errors   []string    `json:"errors,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
	Info     string      `json:"info,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, env FlowEnvelope) {
	env.Success = true
	writeJSON(w, http.StatusOK, env)
}

// writeError maps a service error to a status code and a FlowEnvelope.
// The not-verified kind is not a failure page; it redirects into the
// OTP flow instead.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotVerified) {
		writeJSON(w, http.StatusOK, FlowEnvelope{
			Success:  false,
			Errors:   []string{err.Error()},
			Redirect: "/user-otp",
		})
		return
	}
	writeJSON(w, statusFor(err), FlowEnvelope{Success: false, Errors: []string{err.Error()}})
}

func writeValidationError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, FlowEnvelope{Success: false, Errors: []string{msg}})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownCourse):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConnection):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrEmailDelivery):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
