package brevo

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/course-agent-api/internal/domain"
)

// OTP email kinds select the heading and intro line.
const (
	OTPKindVerification = "verification"
	OTPKindReset        = "reset"
)

var otpTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; background: #0c0c17; color: #fff; margin: 0; padding: 20px; }
    .container { max-width: 600px; margin: 0 auto; background: rgba(12, 12, 23, 0.9); border: 1px solid #00ff9d; border-radius: 10px; padding: 30px; }
    .header { text-align: center; margin-bottom: 30px; }
    .logo { font-size: 2.5rem; color: #00ff9d; margin-bottom: 10px; }
    .title { font-size: 1.5rem; color: #00ff9d; margin-bottom: 10px; }
    .otp-code { background: rgba(0, 255, 157, 0.1); border: 2px solid #00ff9d; border-radius: 8px; padding: 20px; text-align: center; font-size: 2rem; font-weight: bold; letter-spacing: 5px; margin: 20px 0; color: #00ff9d; }
    .footer { margin-top: 30px; text-align: center; font-size: 0.8rem; color: #888; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="logo">🤖 AI AGENT SYSTEM</div>
      <h1 class="title">{{.Title}}</h1>
    </div>
    <p>Hello,</p>
    <p>{{.Intro}}</p>
    <div class="otp-code">{{.Code}}</div>
    <p>This code will expire in 10 minutes. Please do not share this code with anyone.</p>
    <div class="footer">
      <p>If you didn't request this code, please ignore this email.</p>
      <p>&copy; 2025 AI Agent System. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))

// OTPEmail renders the subject and HTML body for a verification or
// password-reset code message.
func OTPEmail(kind, code string) (subject, htmlBody string, err error) {
	data := struct {
		Title string
		Intro string
		Code  string
	}{Code: code}

	switch kind {
	case OTPKindReset:
		subject = "AI Agent System - Password Reset Code"
		data.Title = "Password Reset Code"
		data.Intro = "Your password reset code for AI Agent System"
	default:
		subject = "AI Agent System - Email Verification Code"
		data.Title = "Email Verification Code"
		data.Intro = "Your verification code for AI Agent System"
	}

	var b strings.Builder
	if err := otpTmpl.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("render otp email: %w", err)
	}
	return subject, b.String(), nil
}

var scheduleTmpl = template.Must(template.New("schedule").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; background: #0c0c17; color: #fff; margin: 0; padding: 20px; }
    .container { max-width: 600px; margin: 0 auto; background: rgba(12, 12, 23, 0.9); border: 1px solid #00ff9d; border-radius: 10px; padding: 30px; }
    .header { text-align: center; margin-bottom: 30px; }
    .logo { font-size: 2.5rem; color: #00ff9d; margin-bottom: 10px; }
    .title { font-size: 1.5rem; color: #00ff9d; margin-bottom: 10px; }
    .course-info { background: rgba(0, 255, 157, 0.1); border: 2px solid #00ff9d; border-radius: 8px; padding: 20px; margin: 20px 0; }
    .schedule-details { background: rgba(0, 255, 157, 0.05); border-radius: 8px; padding: 15px; margin: 15px 0; }
    .detail-item { margin: 10px 0; }
    .detail-label { font-weight: bold; color: #00ff9d; }
    .footer { margin-top: 30px; text-align: center; font-size: 0.8rem; color: #888; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="logo">🤖 AI AGENT SYSTEM</div>
      <h1 class="title">Learning Schedule Confirmation</h1>
    </div>
    <p>Hello {{.Name}},</p>
    <p>Congratulations! Your learning schedule has been successfully set up.</p>

    <div class="course-info">
      <h2>{{.CourseName}}</h2>
      <p>Your personalized learning journey is about to begin!</p>
    </div>

    <div class="schedule-details">
      <h3>Schedule Details:</h3>
      {{if .Schedule.FullName}}<div class="detail-item"><span class="detail-label">Full Name:</span> {{.Schedule.FullName}}</div>{{end}}
      {{if .Schedule.Duration}}<div class="detail-item"><span class="detail-label">Learning Duration:</span> {{.Schedule.Duration}} days</div>{{end}}
      {{if .Schedule.PreferredTime}}<div class="detail-item"><span class="detail-label">Preferred Time:</span> {{.Schedule.PreferredTime}}</div>{{end}}
      {{if .Schedule.NotificationMethod}}<div class="detail-item"><span class="detail-label">Notification Method:</span> {{.Schedule.NotificationMethod}}</div>{{end}}
      {{if .Schedule.WhatsApp}}<div class="detail-item"><span class="detail-label">WhatsApp:</span> {{.Schedule.WhatsApp}}</div>{{end}}
    </div>

    <p>You'll receive your first lesson according to your schedule. Make sure to check your email (and spam folder) for your lessons.</p>
    <p>If you have any questions or need to modify your schedule, please visit your dashboard.</p>

    <div class="footer">
      <p>&copy; 2025 AI Agent System. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))

// ScheduleEmail renders the subject and HTML body confirming a course
// enrollment. Schedule fields are independently toggled into the body.
func ScheduleEmail(name, courseName string, sched domain.Schedule) (subject, htmlBody string, err error) {
	subject = fmt.Sprintf("AI Agent System - %s Learning Schedule Confirmation", courseName)
	data := struct {
		Name       string
		CourseName string
		Schedule   domain.Schedule
	}{Name: name, CourseName: courseName, Schedule: sched}

	var b strings.Builder
	if err := scheduleTmpl.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("render schedule email: %w", err)
	}
	return subject, b.String(), nil
}
