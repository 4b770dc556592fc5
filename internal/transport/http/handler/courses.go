package handler

import (
	"net/http"

	"github.com/course-agent-api/internal/application/schedule"
	"github.com/course-agent-api/internal/domain"
	"github.com/course-agent-api/internal/pkg/validate"
	"github.com/course-agent-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// CourseHandler serves the catalog, enrollment and schedule endpoints.
// All routes behind it require an authenticated session.
type CourseHandler struct {
	svc schedule.Service
}

func NewCourseHandler(svc schedule.Service) *CourseHandler {
	return &CourseHandler{svc: svc}
}

func (h *CourseHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, FlowEnvelope{Data: h.svc.Courses()})
}

func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	courseID := chi.URLParam(r, "id")

	var req domain.ScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	e, err := h.svc.SelectCourse(r.Context(), sess.UserID, courseID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{
		Info: "Your learning schedule has been confirmed. A confirmation has been sent to your email.",
		Data: e,
	})
}

func (h *CourseHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	courseID := chi.URLParam(r, "id")

	var req domain.ScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body. Please check your input and try again.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.svc.UpdateSchedule(r.Context(), sess.UserID, courseID, req); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Info: schedule.InfoScheduleUpdated})
}

func (h *CourseHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	list, err := h.svc.UserCourses(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Data: list})
}

func (h *CourseHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	u, err := h.svc.UserInfo(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, FlowEnvelope{Data: u})
}
