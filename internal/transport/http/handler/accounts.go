package handler

import (
	"net/http"

	"github.com/course-agent-api/internal/application/account"
	"github.com/course-agent-api/internal/domain"
	"github.com/course-agent-api/internal/pkg/validate"
	"github.com/course-agent-api/internal/transport/http/middleware"
)

// AccountHandler handles signup, login, OTP verification and the
// password recovery flow.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeValidationError(w, "Session could not be established. Please refresh the page and try again.")
		return
	}
	var req domain.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.svc.Signup(r.Context(), sess, req); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Info: sess.Info, Redirect: "/user-otp"})
}

func (h *AccountHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeValidationError(w, "Session could not be established. Please refresh the page and try again.")
		return
	}
	var req domain.VerifyCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.svc.VerifyOTP(r.Context(), sess, req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Redirect: "/course-schedule"})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeValidationError(w, "Session could not be established. Please refresh the page and try again.")
		return
	}
	var req domain.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.svc.Login(r.Context(), sess, req); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Redirect: "/course-schedule"})
}

func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeValidationError(w, "Session could not be established. Please refresh the page and try again.")
		return
	}
	var req domain.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), sess, req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Info: sess.Info, Redirect: "/reset-password"})
}

func (h *AccountHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeValidationError(w, "Session could not be established. Please refresh the page and try again.")
		return
	}
	var req domain.VerifyCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.svc.VerifyResetCode(r.Context(), sess, req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Info: sess.Info, Redirect: "/new-password"})
}

func (h *AccountHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeValidationError(w, "Session could not be established. Please refresh the page and try again.")
		return
	}
	var req domain.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.svc.ChangePassword(r.Context(), sess, req); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Info: sess.Info, Redirect: "/signin"})
}

// Logout blanks the session identity in place; the middleware persists
// the cleared document under the same session id.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if ok {
		sess.ClearIdentity()
	}
	writeSuccess(w, FlowEnvelope{Redirect: "/signin"})
}
