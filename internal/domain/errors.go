package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services attach user-presentable messages via E; handlers map kinds
// to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrNotVerified        = errors.New("email verification required")
	ErrSessionExpired     = errors.New("session expired")
	ErrConnection         = errors.New("store unreachable")
	ErrPersistence        = errors.New("write not applied")
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrUnknownCourse      = errors.New("unknown course")
)

// Error pairs an error kind with a complete, user-presentable sentence.
// Error() returns only the sentence so the boundary can surface it
// verbatim; Unwrap() exposes the kind for errors.Is dispatch.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// E builds a kinded error carrying the given user-facing message.
func E(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}
