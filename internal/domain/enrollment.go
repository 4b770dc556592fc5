package domain

import "time"

const EnrollmentActive = "active"

// Schedule holds a learner's delivery preferences. Every field is
// optional; the confirmation email includes only the fields present.
type Schedule struct {
	FullName           string `json:"fullname,omitempty" dynamodbav:"fullname,omitempty"`
	WhatsApp           string `json:"whatsapp,omitempty" dynamodbav:"whatsapp,omitempty"`
	Duration           string `json:"duration,omitempty" dynamodbav:"duration,omitempty"`
	PreferredTime      string `json:"preferred_time,omitempty" dynamodbav:"preferred_time,omitempty"`
	Frequency          string `json:"frequency,omitempty" dynamodbav:"frequency,omitempty"`
	Pace               string `json:"pace,omitempty" dynamodbav:"pace,omitempty"`
	NotificationMethod string `json:"notification_method,omitempty" dynamodbav:"notification_method,omitempty"`
}

// Enrollment links an account to a chosen course. CourseName is a
// denormalized copy of the catalog display name at enrollment time.
// The user reference is weak; the store does not enforce it, and one
// account may hold several enrollments for the same course.
type Enrollment struct {
	EnrollmentID string    `json:"id" dynamodbav:"enrollment_id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	CourseID     string    `json:"course_id" dynamodbav:"course_id"`
	CourseName   string    `json:"course_name" dynamodbav:"course_name"`
	Schedule     Schedule  `json:"schedule" dynamodbav:"schedule"`
	Status       string    `json:"status" dynamodbav:"status"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type ScheduleRequest struct {
	FullName           string `json:"fullname"`
	WhatsApp           string `json:"whatsapp"`
	Duration           string `json:"duration"`
	PreferredTime      string `json:"preferred_time"`
	Frequency          string `json:"frequency"`
	Pace               string `json:"pace"`
	NotificationMethod string `json:"notification_method" validate:"omitempty,oneof=email sms whatsapp"`
}

// Payload converts the request body into the stored schedule document.
// Nothing is defaulted or rewritten on the way in.
func (r ScheduleRequest) Payload() Schedule {
	return Schedule{
		FullName:           r.FullName,
		WhatsApp:           r.WhatsApp,
		Duration:           r.Duration,
		PreferredTime:      r.PreferredTime,
		Frequency:          r.Frequency,
		Pace:               r.Pace,
		NotificationMethod: r.NotificationMethod,
	}
}
