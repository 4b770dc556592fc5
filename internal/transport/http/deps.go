package http

import (
	"github.com/course-agent-api/internal/infrastructure/brevo"
	"github.com/course-agent-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/course-agent-api/internal/infrastructure/jwt"
	"github.com/course-agent-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	EnrollmentRepo   *dynamo.EnrollmentRepo
	SessionRepo      *dynamo.SessionRepo
	VerificationRepo *dynamo.VerificationRepo
	Mailer           brevo.Mailer
	// SMSSender may be nil when SNS is not configured.
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}
