package domain

import "time"

// Verification flow types. Signup confirmation and password reset keep
// independent records so one flow can never satisfy the other.
const (
	VerificationSignup = "signup"
	VerificationReset  = "reset"
)

// Verification stores a pending 6-digit code for one account and flow.
// PK: user_id, SK: type ("signup" | "reset").
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; the services also
// check it so an unreaped record cannot verify after its window.
type Verification struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Type      string `json:"type" dynamodbav:"type"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}

func (v *Verification) Expired(now time.Time) bool {
	return v.ExpiresAt < now.Unix()
}
