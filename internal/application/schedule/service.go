package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/course-agent-api/internal/domain"
	"github.com/course-agent-api/internal/infrastructure/brevo"
	"github.com/course-agent-api/internal/pkg/id"
)

const (
	msgUnknownCourse    = "The selected course is not available. Please choose a valid course from the catalog."
	msgEnrollFailed     = "Course enrollment failed. Please try again or contact support if the issue persists."
	msgStoreUnavailable = "Unable to establish database connection. Please try again in a few moments."
	msgNoEnrollment     = "No enrollment found for this course. Please select the course first."
	msgUpdateFailed     = "Unable to update learning schedule. Please try again or contact support for assistance."
)

// InfoScheduleUpdated confirms a successful schedule change.
const InfoScheduleUpdated = "Learning schedule updated successfully."

// Service covers the course side of the app: catalog, enrollment with
// schedule preferences, schedule updates and listing what a user is
// enrolled in.
type Service interface {
	Courses() map[string]string
	SelectCourse(ctx context.Context, userID, courseID string, req domain.ScheduleRequest) (*domain.Enrollment, error)
	UpdateSchedule(ctx context.Context, userID, courseID string, req domain.ScheduleRequest) error
	UserCourses(ctx context.Context, userID string) ([]domain.Enrollment, error)
	UserInfo(ctx context.Context, userID string) (*domain.User, error)
}

type enrollmentStore interface {
	Put(ctx context.Context, e *domain.Enrollment) error
	ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error)
	GetByUserCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error)
	UpdateSchedule(ctx context.Context, enrollmentID string, sched domain.Schedule) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	enrollments enrollmentStore
	users       userStore
	mailer      mailer
	sms         smsSender
}

type ServiceDeps struct {
	EnrollmentRepo enrollmentStore
	UserRepo       userStore
	Mailer         mailer
	// SMSSender may be nil; SMS confirmations are then skipped.
	SMSSender smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		enrollments: deps.EnrollmentRepo,
		users:       deps.UserRepo,
		mailer:      deps.Mailer,
		sms:         deps.SMSSender,
	}
}

func (s *service) Courses() map[string]string {
	return domain.Courses
}

func (s *service) SelectCourse(ctx context.Context, userID, courseID string, req domain.ScheduleRequest) (*domain.Enrollment, error) {
	courseName, ok := domain.CourseName(courseID)
	if !ok {
		return nil, domain.E(domain.ErrUnknownCourse, msgUnknownCourse)
	}

	now := time.Now().UTC()
	e := &domain.Enrollment{
		EnrollmentID: id.New(),
		UserID:       userID,
		CourseID:     courseID,
		CourseName:   courseName,
		Schedule:     req.Payload(),
		Status:       domain.EnrollmentActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.enrollments.Put(ctx, e); err != nil {
		return nil, domain.E(domain.ErrPersistence, msgEnrollFailed)
	}

	// The enrollment is committed; confirmation delivery is best-effort
	// and never fails the operation.
	s.sendConfirmations(ctx, e)
	return e, nil
}

func (s *service) UpdateSchedule(ctx context.Context, userID, courseID string, req domain.ScheduleRequest) error {
	if _, ok := domain.CourseName(courseID); !ok {
		return domain.E(domain.ErrUnknownCourse, msgUnknownCourse)
	}

	e, err := s.enrollments.GetByUserCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.ErrNotFound, msgNoEnrollment)
		}
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}

	if err := s.enrollments.UpdateSchedule(ctx, e.EnrollmentID, req.Payload()); err != nil {
		return domain.E(domain.ErrPersistence, msgUpdateFailed)
	}
	return nil
}

func (s *service) UserCourses(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	list, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.E(domain.ErrConnection, msgStoreUnavailable)
	}
	return list, nil
}

func (s *service) UserInfo(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.ErrNotFound, "Account not found. Please sign in again.")
		}
		return nil, domain.E(domain.ErrConnection, msgStoreUnavailable)
	}
	return u, nil
}

// sendConfirmations emails the enrollment summary and, when the
// learner asked for sms or whatsapp delivery and left a number, sends
// a short SMS as well. Failures are logged, never surfaced.
func (s *service) sendConfirmations(ctx context.Context, e *domain.Enrollment) {
	u, err := s.users.Get(ctx, e.UserID)
	if err != nil {
		slog.Warn("enrollment confirmation skipped, user lookup failed", "user_id", e.UserID, "err", err)
		return
	}

	subject, body, err := brevo.ScheduleEmail(u.Name, e.CourseName, e.Schedule)
	if err != nil {
		slog.Warn("enrollment confirmation email render failed", "enrollment_id", e.EnrollmentID, "err", err)
	} else if err := s.mailer.SendEmail(ctx, u.Email, subject, body); err != nil {
		slog.Warn("enrollment confirmation email failed", "enrollment_id", e.EnrollmentID, "email", u.Email, "err", err)
	}

	method := e.Schedule.NotificationMethod
	if s.sms == nil || e.Schedule.WhatsApp == "" || (method != "sms" && method != "whatsapp") {
		return
	}
	msg := fmt.Sprintf("AI Agent System: your %s learning schedule is confirmed. Check %s for details.", e.CourseName, u.Email)
	if err := s.sms.SendSMS(ctx, e.Schedule.WhatsApp, msg); err != nil {
		slog.Warn("enrollment confirmation sms failed", "enrollment_id", e.EnrollmentID, "err", err)
	}
}
