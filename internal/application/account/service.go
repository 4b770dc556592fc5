package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/course-agent-api/internal/domain"
	"github.com/course-agent-api/internal/infrastructure/brevo"
	"github.com/course-agent-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// Codes are claimed to expire in 10 minutes in the email copy; the
// service enforces exactly that window.
const codeTTL = 10 * time.Minute

// DynamoDB attribute names used in partial update maps.
const (
	fieldStatus       = "status"
	fieldPasswordHash = "password_hash"
)

// User-facing copy. Every sentence is presentable as-is; the boundary
// never rewrites these.
const (
	msgPasswordMismatch = "Password confirmation does not match. Please ensure both password fields contain identical values."
	msgEmailTaken       = "This email address is already associated with an account. Please sign in or use a different email address."
	msgStoreUnavailable = "Unable to establish database connection. Please try again in a few moments."
	msgSignupFailed     = "Account creation failed. Please try again or contact support if the issue persists."
	msgVerifyEmailFail  = "Unable to send verification email. Please verify your email address is correct and try again."
	msgInvalidOTP       = "Invalid verification code provided. Please check the code and try again."
	msgExpiredOTP       = "This verification code has expired. Please request a new code and try again."
	msgVerifyFailed     = "Account verification failed. Please try again or contact support for assistance."
	msgNoAccountLogin   = "No account found with this email address. Please register for a new account."
	msgBadCredentials   = "Invalid email or password. Please verify your credentials and try again."
	msgNoAccountReset   = "No account found with this email address. Please verify the email or register for a new account."
	msgResetEmailFail   = "Unable to send password reset email. Please try again in a few moments."
	msgResetFailed      = "Unable to process your request. Please try again or contact support for assistance."
	msgInvalidResetCode = "Invalid reset code provided. Please verify the code and try again."
	msgSessionExpired   = "Session has expired. Please initiate a new password reset process."
	msgChangeFailed     = "Unable to update your password. Please try again or contact support for assistance."
)

// Service owns the account state machine: signup, OTP verification,
// login, password recovery and password change. Every method takes the
// request's flow session explicitly and mutates it in place; the
// transport layer persists it after the call.
type Service interface {
	Signup(ctx context.Context, sess *domain.Session, req domain.SignupRequest) error
	VerifyOTP(ctx context.Context, sess *domain.Session, code string) error
	Login(ctx context.Context, sess *domain.Session, req domain.LoginRequest) error
	ForgotPassword(ctx context.Context, sess *domain.Session, email string) error
	VerifyResetCode(ctx context.Context, sess *domain.Session, code string) error
	ChangePassword(ctx context.Context, sess *domain.Session, req domain.ChangePasswordRequest) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.Verification) error
	Get(ctx context.Context, userID, verType string) (*domain.Verification, error)
	Delete(ctx context.Context, userID, verType string) error
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type service struct {
	users         userStore
	verifications verificationStore
	mailer        mailer
}

type ServiceDeps struct {
	UserRepo         userStore
	VerificationRepo verificationStore
	Mailer           mailer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:         deps.UserRepo,
		verifications: deps.VerificationRepo,
		mailer:        deps.Mailer,
	}
}

func (s *service) Signup(ctx context.Context, sess *domain.Session, req domain.SignupRequest) error {
	if req.Password != req.ConfirmPassword {
		return domain.E(domain.ErrValidation, msgPasswordMismatch)
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return domain.E(domain.ErrConflict, msgEmailTaken)
	}
	if !isNotFound(err) {
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Status:       domain.StatusNotVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return domain.E(domain.ErrPersistence, msgSignupFailed)
	}

	if err := s.issueAndSendCode(ctx, u, domain.VerificationSignup); err != nil {
		// The account survives in notverified state; logging in later
		// reissues a fresh code, so nothing is rolled back here.
		slog.Warn("signup verification email failed", "email", u.Email, "err", err)
		sess.Email = u.Email
		if isKind(err, domain.ErrPersistence) {
			return domain.E(domain.ErrPersistence, msgSignupFailed)
		}
		return domain.E(domain.ErrEmailDelivery, msgVerifyEmailFail)
	}

	sess.Email = u.Email
	sess.Info = fmt.Sprintf("A verification code has been sent to %s. Please check your inbox and enter the code to complete registration.", u.Email)
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, sess *domain.Session, code string) error {
	if sess.Email == "" {
		return domain.E(domain.ErrSessionExpired, "Session has expired. Please sign in or register again to receive a new verification code.")
	}
	u, err := s.users.GetByEmail(ctx, sess.Email)
	if err != nil {
		if isNotFound(err) {
			return domain.E(domain.ErrInvalidCode, msgInvalidOTP)
		}
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}

	if err := s.checkCode(ctx, u.UserID, domain.VerificationSignup, code, msgInvalidOTP); err != nil {
		return err
	}

	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{fieldStatus: domain.StatusVerified}); err != nil {
		return domain.E(domain.ErrPersistence, msgVerifyFailed)
	}
	if err := s.verifications.Delete(ctx, u.UserID, domain.VerificationSignup); err != nil {
		slog.Warn("failed to delete signup verification record", "user_id", u.UserID, "err", err)
	}

	sess.Authenticate(u)
	return nil
}

func (s *service) Login(ctx context.Context, sess *domain.Session, req domain.LoginRequest) error {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return domain.E(domain.ErrNotFound, msgNoAccountLogin)
		}
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return domain.E(domain.ErrInvalidCredentials, msgBadCredentials)
	}

	sess.Email = u.Email
	sess.Name = u.Name

	if !u.Verified() {
		// A fresh code lets a user who lost the first email finish
		// verification straight from the login flow.
		if err := s.issueAndSendCode(ctx, u, domain.VerificationSignup); err != nil {
			slog.Warn("could not reissue signup code on login", "user_id", u.UserID, "err", err)
		}
		info := fmt.Sprintf("Email verification required for %s. Please complete verification to access your account.", u.Email)
		sess.Info = info
		return domain.E(domain.ErrNotVerified, info)
	}

	sess.UserID = u.UserID
	return nil
}

func (s *service) ForgotPassword(ctx context.Context, sess *domain.Session, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return domain.E(domain.ErrNotFound, msgNoAccountReset)
		}
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}

	if err := s.issueAndSendCode(ctx, u, domain.VerificationReset); err != nil {
		if isKind(err, domain.ErrPersistence) {
			return domain.E(domain.ErrPersistence, msgResetFailed)
		}
		return domain.E(domain.ErrEmailDelivery, msgResetEmailFail)
	}

	sess.Email = u.Email
	sess.Info = fmt.Sprintf("A password reset code has been sent to %s. Please check your inbox.", u.Email)
	return nil
}

func (s *service) VerifyResetCode(ctx context.Context, sess *domain.Session, code string) error {
	if sess.Email == "" {
		return domain.E(domain.ErrSessionExpired, msgSessionExpired)
	}
	u, err := s.users.GetByEmail(ctx, sess.Email)
	if err != nil {
		if isNotFound(err) {
			return domain.E(domain.ErrInvalidCode, msgInvalidResetCode)
		}
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}

	// The code is deliberately not consumed here; it stays valid until
	// the password change completes, bounded by its expiry.
	if err := s.checkCode(ctx, u.UserID, domain.VerificationReset, code, msgInvalidResetCode); err != nil {
		return err
	}

	sess.Info = "Please create a new password for your account."
	return nil
}

func (s *service) ChangePassword(ctx context.Context, sess *domain.Session, req domain.ChangePasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return domain.E(domain.ErrValidation, msgPasswordMismatch)
	}
	if sess.Email == "" {
		return domain.E(domain.ErrSessionExpired, msgSessionExpired)
	}

	u, err := s.users.GetByEmail(ctx, sess.Email)
	if err != nil {
		if isNotFound(err) {
			return domain.E(domain.ErrPersistence, msgChangeFailed)
		}
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{fieldPasswordHash: string(hash)}); err != nil {
		return domain.E(domain.ErrPersistence, msgChangeFailed)
	}
	if err := s.verifications.Delete(ctx, u.UserID, domain.VerificationReset); err != nil {
		slog.Warn("failed to delete reset verification record", "user_id", u.UserID, "err", err)
	}

	sess.Info = "Your password has been successfully updated. You may now sign in with your new credentials."
	return nil
}

// issueAndSendCode stores a fresh code for the given flow and emails
// it. The code is persisted before the send is attempted.
func (s *service) issueAndSendCode(ctx context.Context, u *domain.User, verType string) error {
	code, err := newCode()
	if err != nil {
		return err
	}
	v := &domain.Verification{
		UserID:    u.UserID,
		Type:      verType,
		Code:      code,
		ExpiresAt: time.Now().Add(codeTTL).Unix(),
	}
	if err := s.verifications.Put(ctx, v); err != nil {
		return domain.E(domain.ErrPersistence, msgResetFailed)
	}

	kind := brevo.OTPKindVerification
	if verType == domain.VerificationReset {
		kind = brevo.OTPKindReset
	}
	subject, body, err := brevo.OTPEmail(kind, code)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(ctx, u.Email, subject, body)
}

// checkCode validates a submitted code against the stored record for
// one account and flow. Missing, mismatched and expired all surface as
// the same invalid-code kind.
func (s *service) checkCode(ctx context.Context, userID, verType, code, invalidMsg string) error {
	v, err := s.verifications.Get(ctx, userID, verType)
	if err != nil {
		if isNotFound(err) {
			return domain.E(domain.ErrInvalidCode, invalidMsg)
		}
		return domain.E(domain.ErrConnection, msgStoreUnavailable)
	}
	if v.Code != code {
		return domain.E(domain.ErrInvalidCode, invalidMsg)
	}
	if v.Expired(time.Now()) {
		return domain.E(domain.ErrInvalidCode, msgExpiredOTP)
	}
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }

func isKind(err, kind error) bool { return errors.Is(err, kind) }

// newCode draws a uniformly random 6-digit code in [111111, 999999].
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(999999-111111+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+111111), nil
}
