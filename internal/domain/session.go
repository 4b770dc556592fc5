package domain

import "time"

// Session is the per-browser flow context. It is loaded by the
// transport layer, passed explicitly into every service call, mutated
// in place, and persisted after the handler returns. It never holds a
// password or any other secret — only what is needed to resume a
// multi-request flow.
type Session struct {
	SessionID string    `json:"id" dynamodbav:"session_id"`
	UserID    string    `json:"user_id,omitempty" dynamodbav:"user_id"`
	Name      string    `json:"name,omitempty" dynamodbav:"name"`
	Email     string    `json:"email,omitempty" dynamodbav:"email"`
	Info      string    `json:"info,omitempty" dynamodbav:"info"`
	ExpiresAt int64     `json:"-" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Authenticated reports whether a login or OTP verification has bound
// this session to an account.
func (s *Session) Authenticated() bool { return s.UserID != "" }

// Authenticate binds the session to a verified account.
func (s *Session) Authenticate(u *User) {
	s.UserID = u.UserID
	s.Name = u.Name
	s.Email = u.Email
}

// ClearIdentity resets the session to anonymous, keeping the session id.
func (s *Session) ClearIdentity() {
	s.UserID = ""
	s.Name = ""
	s.Email = ""
	s.Info = ""
}
